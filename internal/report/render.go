// Package report formats a DomainReport as plain text.
package report

import (
	"fmt"
	"strings"

	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/normalize"
)

const (
	heavyRule = "=================================================="
	lightRule = "------------------------------"
)

var tlsDescriptions = map[core.TLSOutcome]string{
	core.TLSValid:                "Valid certificate",
	core.TLSInvalidCertificate:   "Invalid certificate",
	core.TLSNameUnresolvable:     "Domain name does not resolve",
	core.TLSConnectionRefused:    "Connection refused",
	core.TLSTimeout:              "Connection timed out",
	core.TLSOtherConnectionError: "Connection error",
	core.TLSUnknownFailure:       "Check failed",
}

// Render lays the report out as header, registration, DNS, TLS and elapsed
// time. Output depends only on the report, so two renders of equal reports
// are identical.
func Render(r *core.DomainReport) string {
	var b strings.Builder

	b.WriteString(heavyRule + "\n")
	b.WriteString("Domain Report\n")
	b.WriteString(heavyRule + "\n\n")

	fmt.Fprintf(&b, "Domain: %s\n", r.Domain)
	if r.MainDomain != r.Domain {
		fmt.Fprintf(&b, "Main domain: %s\n", r.MainDomain)
	}
	b.WriteString(lightRule + "\n")

	writeRegistration(&b, r.Registration)
	writeDNS(&b, r.DNS)
	writeTLS(&b, r.TLS)

	fmt.Fprintf(&b, "\nElapsed: %.2fs\n", r.Elapsed.Seconds())
	return b.String()
}

func writeRegistration(b *strings.Builder, info core.RegistrationInfo) {
	b.WriteString("\nRegistration:\n")
	if info.Failed() {
		fmt.Fprintf(b, "  Error: %s\n", info.Error)
		return
	}

	fmt.Fprintf(b, "  Registrar: %s\n", info.Registrar)
	fmt.Fprintf(b, "  Created: %s\n", info.CreationDate)
	fmt.Fprintf(b, "  Expires: %s\n", info.ExpirationDate)
	fmt.Fprintf(b, "  Last updated: %s\n", info.LastUpdated)
	writeMultiValue(b, "Status", info.Status)
	writeMultiValue(b, "Name servers", info.NameServers)
}

// writeMultiValue puts known values on their own indented lines and keeps
// "unknown" inline.
func writeMultiValue(b *strings.Builder, label, value string) {
	if value == core.Unknown || value == "" {
		fmt.Fprintf(b, "  %s: %s\n", label, core.Unknown)
		return
	}
	fmt.Fprintf(b, "  %s:%s%s\n", label, normalize.MultiValueSeparator, value)
}

func writeDNS(b *strings.Builder, records core.DNSRecordSet) {
	b.WriteString("\nDNS records:\n")
	types := records.Types()
	if len(types) == 0 {
		b.WriteString("  No DNS records found\n")
		return
	}
	for _, t := range types {
		fmt.Fprintf(b, "  %s:\n", t)
		for _, value := range records[t] {
			fmt.Fprintf(b, "    - %s\n", value)
		}
	}
}

func writeTLS(b *strings.Builder, status core.TLSStatus) {
	b.WriteString("\nTLS:\n")
	fmt.Fprintf(b, "  %s\n", DescribeTLS(status))
	if status.Valid() && status.StatusCode != 0 {
		fmt.Fprintf(b, "  HTTP status: %d\n", status.StatusCode)
	}
}

// DescribeTLS is the human-readable form of a TLS outcome.
func DescribeTLS(status core.TLSStatus) string {
	if d, ok := tlsDescriptions[status.Outcome]; ok {
		return d
	}
	return tlsDescriptions[core.TLSUnknownFailure]
}
