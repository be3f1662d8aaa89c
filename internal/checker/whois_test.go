package checker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/normalize"
)

func TestWHOISChecker_Lookup(t *testing.T) {
	created := time.Date(1995, 8, 14, 4, 0, 0, 0, time.UTC)

	client := &fakeWhoisClient{record: &RawWhoisRecord{
		DomainName: normalize.TextList([]string{"EXAMPLE.COM", "example.com"}),
		Registrar:  normalize.TextList([]string{"Example Registrar, LLC", "Other"}),
		CreationDate: normalize.List(
			normalize.Time(created.AddDate(1, 0, 0)),
			normalize.Null(),
			normalize.Time(created),
		),
		ExpirationDate: normalize.SingleText("2030-08-13 04:00:00"),
		UpdatedDate:    normalize.Absent(),
		Status: normalize.TextList([]string{
			"clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited",
			"clientTransferProhibited (pending)",
			"clientDeleteProhibited",
		}),
		NameServers: normalize.TextList([]string{"B.IANA-SERVERS.NET", "a.iana-servers.net", "A.IANA-SERVERS.NET"}),
	}}

	info := NewWHOISChecker(client, nil).Lookup(context.Background(), "example.com")

	assert.False(t, info.Failed())
	assert.Equal(t, "Example Registrar, LLC", info.Registrar)
	assert.Equal(t, "1995-08-14", info.CreationDate)
	assert.Equal(t, "2030-08-13", info.ExpirationDate)
	assert.Equal(t, core.Unknown, info.LastUpdated)
	assert.Equal(t, "clientDeleteProhibited"+normalize.MultiValueSeparator+"clientTransferProhibited", info.Status)
	assert.Equal(t, "a.iana-servers.net"+normalize.MultiValueSeparator+"b.iana-servers.net", info.NameServers)
	assert.Equal(t, []string{"example.com"}, client.queried)
}

func TestWHOISChecker_Failures(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeWhoisClient
		message string
	}{
		{
			name:    "client error",
			client:  &fakeWhoisClient{err: errors.New("connection reset")},
			message: "connection reset",
		},
		{
			name:    "nil record",
			client:  &fakeWhoisClient{},
			message: ErrNoDomainName.Error(),
		},
		{
			name: "record without domain name",
			client: &fakeWhoisClient{record: &RawWhoisRecord{
				DomainName: normalize.List(normalize.Null()),
				Registrar:  normalize.SingleText("Somebody"),
			}},
			message: ErrNoDomainName.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewWHOISChecker(tt.client, nil).Lookup(context.Background(), "example.com")
			require.True(t, info.Failed())
			assert.Contains(t, info.Error, tt.message)
			assert.True(t, strings.HasPrefix(info.Error, "registration lookup failed"))
			assert.Empty(t, info.Registrar)
		})
	}
}

const verisignExample = `   Domain Name: EXAMPLE.COM
   Registry Domain ID: 2336799_DOMAIN_COM-VRSN
   Registrar WHOIS Server: whois.iana.org
   Registrar URL: http://res-dom.iana.org
   Updated Date: 2024-08-14T07:01:34Z
   Creation Date: 1995-08-14T04:00:00Z
   Registry Expiry Date: 2025-08-13T04:00:00Z
   Registrar: RESERVED-Internet Assigned Numbers Authority
   Registrar IANA ID: 376
   Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited
   Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited
   Domain Status: clientUpdateProhibited https://icann.org/epp#clientUpdateProhibited
   Name Server: A.IANA-SERVERS.NET
   Name Server: B.IANA-SERVERS.NET
   DNSSEC: signedDelegation
`

func TestParseWhois(t *testing.T) {
	record, err := ParseWhois(verisignExample)
	require.NoError(t, err)

	assert.Equal(t, "example.com", strings.ToLower(normalize.Registrar(record.DomainName)))
	assert.Contains(t, normalize.Registrar(record.Registrar), "Internet Assigned Numbers Authority")
	assert.Equal(t, "1995-08-14", normalize.Date(record.CreationDate))
	assert.Equal(t, "2025-08-13", normalize.Date(record.ExpirationDate))
	assert.Equal(t, "2024-08-14", normalize.Date(record.UpdatedDate))
	assert.NotEqual(t, core.Unknown, normalize.Status(record.Status))
	assert.Equal(t, "a.iana-servers.net"+normalize.MultiValueSeparator+"b.iana-servers.net", normalize.NameServers(record.NameServers))
}

func TestParseWhois_NotFound(t *testing.T) {
	_, err := ParseWhois("No match for \"NOPE-NOT-REGISTERED.COM\".\n>>> Last update of whois database: 2024-01-01T00:00:00Z <<<\n")
	assert.Error(t, err)
}

func TestParsedDate(t *testing.T) {
	ts := time.Date(1997, 9, 15, 4, 0, 0, 0, time.UTC)
	assert.Equal(t, "1997-09-15", normalize.Date(parsedDate(&ts, "1997-09-15T04:00:00Z")))
	assert.Equal(t, "15-sep-1997", normalize.Date(parsedDate(nil, "15-sep-1997")))
	assert.Equal(t, core.Unknown, normalize.Date(parsedDate(nil, "")))
}
