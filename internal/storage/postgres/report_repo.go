package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leozw/domain-inspector/internal/core"
)

const defaultHistoryLimit = 20

type reportRow struct {
	ID            uuid.UUID `db:"id"`
	Domain        string    `db:"domain"`
	MainDomain    string    `db:"main_domain"`
	Registration  []byte    `db:"registration"`
	DNS           []byte    `db:"dns"`
	TLSOutcome    string    `db:"tls_outcome"`
	TLSStatusCode int       `db:"tls_status_code"`
	ElapsedMS     int64     `db:"elapsed_ms"`
	CheckedAt     time.Time `db:"checked_at"`
}

func toRow(r *core.DomainReport) (*reportRow, error) {
	registration, err := json.Marshal(r.Registration)
	if err != nil {
		return nil, fmt.Errorf("encode registration: %w", err)
	}

	dns := r.DNS
	if dns == nil {
		dns = core.DNSRecordSet{}
	}
	dnsJSON, err := json.Marshal(dns)
	if err != nil {
		return nil, fmt.Errorf("encode dns records: %w", err)
	}

	return &reportRow{
		ID:            r.ID,
		Domain:        r.Domain,
		MainDomain:    r.MainDomain,
		Registration:  registration,
		DNS:           dnsJSON,
		TLSOutcome:    string(r.TLS.Outcome),
		TLSStatusCode: r.TLS.StatusCode,
		ElapsedMS:     r.Elapsed.Milliseconds(),
		CheckedAt:     r.CheckedAt,
	}, nil
}

func (row *reportRow) toReport() (*core.DomainReport, error) {
	report := &core.DomainReport{
		ID:         row.ID,
		Domain:     row.Domain,
		MainDomain: row.MainDomain,
		DNS:        core.DNSRecordSet{},
		TLS: core.TLSStatus{
			Outcome:    core.TLSOutcome(row.TLSOutcome),
			StatusCode: row.TLSStatusCode,
		},
		Elapsed:   time.Duration(row.ElapsedMS) * time.Millisecond,
		CheckedAt: row.CheckedAt,
	}

	if err := json.Unmarshal(row.Registration, &report.Registration); err != nil {
		return nil, fmt.Errorf("decode registration for report %s: %w", row.ID, err)
	}
	if len(row.DNS) > 0 {
		if err := json.Unmarshal(row.DNS, &report.DNS); err != nil {
			return nil, fmt.Errorf("decode dns records for report %s: %w", row.ID, err)
		}
	}
	return report, nil
}

// ReportRepository stores report history in the domain_reports table.
type ReportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Save(ctx context.Context, report *core.DomainReport) error {
	row, err := toRow(report)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO domain_reports (
            id, domain, main_domain, registration, dns,
            tls_outcome, tls_status_code, elapsed_ms, checked_at
        ) VALUES (
            :id, :domain, :main_domain, :registration, :dns,
            :tls_outcome, :tls_status_code, :elapsed_ms, :checked_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert report %s: %w", report.ID, err)
	}
	return nil
}

// ListByDomain returns up to limit reports for domain, newest first.
func (r *ReportRepository) ListByDomain(ctx context.Context, domain string, limit int) ([]*core.DomainReport, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows := []reportRow{}
	query := `
        SELECT id, domain, main_domain, registration, dns,
               tls_outcome, tls_status_code, elapsed_ms, checked_at
        FROM domain_reports
        WHERE domain = $1
        ORDER BY checked_at DESC
        LIMIT $2`

	if err := r.db.SelectContext(ctx, &rows, query, domain, limit); err != nil {
		return nil, fmt.Errorf("list reports for %s: %w", domain, err)
	}

	reports := make([]*core.DomainReport, 0, len(rows))
	for i := range rows {
		report, err := rows[i].toReport()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
