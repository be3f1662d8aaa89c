package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leozw/domain-inspector/internal/config"
	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/worker"
)

func TestParseInputs(t *testing.T) {
	inputs, err := parseInputs(strings.NewReader(`
# production
example.com
  https://www.example.org/login

# staging
   # indented comment
staging.example.net
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "https://www.example.org/login", "staging.example.net"}, inputs)
}

func sampleResults() []worker.Result {
	return []worker.Result{
		{Index: 0, Input: "example.com", Report: &core.DomainReport{
			Domain:       "example.com",
			MainDomain:   "example.com",
			Registration: core.RegistrationFailure("registration lookup failed: timeout"),
			DNS:          core.DNSRecordSet{},
			TLS:          core.TLSValidStatus(200),
		}},
		{Index: 1, Input: "localhost", Err: &core.InputError{Input: "localhost", Domain: "localhost", Err: core.ErrInvalidDomain}},
	}
}

func TestWriteResults_Text(t *testing.T) {
	var out, errOut bytes.Buffer
	err := writeResults(&out, &errOut, sampleResults(), "text")

	assert.ErrorIs(t, err, errInvalidInputs)
	assert.Contains(t, out.String(), "Domain: example.com\n")
	assert.Equal(t, "localhost: Invalid domain format\n", errOut.String())
}

func TestWriteResults_JSON(t *testing.T) {
	var out, errOut bytes.Buffer
	results := sampleResults()
	results = append(results, worker.Result{Index: 2, Input: "example.net", Err: errors.New("context canceled")})

	err := writeResults(&out, &errOut, results, "json")
	assert.ErrorIs(t, err, errInvalidInputs)
	assert.Empty(t, errOut.String())

	var decoded []lookupResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "example.com", decoded[0].Input)
	assert.Equal(t, "example.com", decoded[0].Report.Domain)
	assert.Equal(t, "Invalid domain format", decoded[1].Error)
	assert.Nil(t, decoded[1].Report)
	assert.Equal(t, "context canceled", decoded[2].Error)
}

func TestWriteResults_AllValid(t *testing.T) {
	var out, errOut bytes.Buffer
	err := writeResults(&out, &errOut, sampleResults()[:1], "text")
	assert.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
