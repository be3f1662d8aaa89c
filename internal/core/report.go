package core

import (
	"time"

	"github.com/google/uuid"
)

// Unknown is the sentinel for a registration field the source did not supply.
const Unknown = "unknown"

type RecordType string

const (
	RecordA     RecordType = "A"
	RecordAAAA  RecordType = "AAAA"
	RecordMX    RecordType = "MX"
	RecordNS    RecordType = "NS"
	RecordTXT   RecordType = "TXT"
	RecordCNAME RecordType = "CNAME"
)

// RecordTypes is the fixed query and display order.
var RecordTypes = []RecordType{RecordA, RecordAAAA, RecordMX, RecordNS, RecordTXT, RecordCNAME}

// DNSRecordSet maps a record type to its values in resolver order. A missing
// type means no records were found or the query failed.
type DNSRecordSet map[RecordType][]string

// Types returns the record types present, in RecordTypes order.
func (s DNSRecordSet) Types() []RecordType {
	types := make([]RecordType, 0, len(s))
	for _, t := range RecordTypes {
		if len(s[t]) > 0 {
			types = append(types, t)
		}
	}
	return types
}

// RegistrationInfo holds either the normalized registration fields or an
// error message, never both. Build it with NewRegistrationInfo or
// RegistrationFailure.
type RegistrationInfo struct {
	Registrar      string `json:"registrar,omitempty"`
	CreationDate   string `json:"creation_date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	LastUpdated    string `json:"last_updated,omitempty"`
	Status         string `json:"status,omitempty"`
	NameServers    string `json:"name_servers,omitempty"`
	Error          string `json:"error,omitempty"`
}

func NewRegistrationInfo(registrar, created, expires, updated, status, nameServers string) RegistrationInfo {
	return RegistrationInfo{
		Registrar:      orUnknown(registrar),
		CreationDate:   orUnknown(created),
		ExpirationDate: orUnknown(expires),
		LastUpdated:    orUnknown(updated),
		Status:         orUnknown(status),
		NameServers:    orUnknown(nameServers),
	}
}

func RegistrationFailure(message string) RegistrationInfo {
	if message == "" {
		message = "registration lookup failed"
	}
	return RegistrationInfo{Error: message}
}

func (r RegistrationInfo) Failed() bool {
	return r.Error != ""
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

type TLSOutcome string

const (
	TLSValid                TLSOutcome = "valid"
	TLSInvalidCertificate   TLSOutcome = "invalid_certificate"
	TLSNameUnresolvable     TLSOutcome = "name_unresolvable"
	TLSConnectionRefused    TLSOutcome = "connection_refused"
	TLSTimeout              TLSOutcome = "timeout"
	TLSOtherConnectionError TLSOutcome = "connection_error"
	TLSUnknownFailure       TLSOutcome = "unknown_failure"
)

// TLSStatus is the outcome of the HTTPS probe. StatusCode is set only for
// TLSValid.
type TLSStatus struct {
	Outcome    TLSOutcome `json:"outcome"`
	StatusCode int        `json:"status_code,omitempty"`
}

func TLSValidStatus(statusCode int) TLSStatus {
	return TLSStatus{Outcome: TLSValid, StatusCode: statusCode}
}

func TLSFailure(outcome TLSOutcome) TLSStatus {
	return TLSStatus{Outcome: outcome}
}

func (s TLSStatus) Valid() bool {
	return s.Outcome == TLSValid
}

// DomainReport is assembled once per lookup and not modified afterwards.
type DomainReport struct {
	ID           uuid.UUID        `json:"id"`
	Domain       string           `json:"domain"`
	MainDomain   string           `json:"main_domain"`
	Registration RegistrationInfo `json:"registration"`
	DNS          DNSRecordSet     `json:"dns"`
	TLS          TLSStatus        `json:"tls"`
	Elapsed      time.Duration    `json:"elapsed"`
	CheckedAt    time.Time        `json:"checked_at"`
}
