package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestQueryText(t *testing.T) {
	dir := t.TempDir()
	seed := writeFile(t, dir, "seed.yaml", seedRecords)
	q := writeFile(t, dir, "contacts.xml", contactsByName)

	out, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), q, "--fixtures", seed)
	require.NoError(t, err)

	assert.Contains(t, out, "contact 00000000-0000-0000-0000-000000000002  firstname=Al statuscode=Inactive")
	assert.Contains(t, out, "contact 00000000-0000-0000-0000-000000000003  firstname=Bob statuscode=Active")
	assert.NotContains(t, out, "Charlie")
	assert.Contains(t, out, "2 record(s), more available")
	assert.Contains(t, out, `paging cookie: <cookie page="1">`)
}

func TestQueryJSON(t *testing.T) {
	dir := t.TempDir()
	seed := writeFile(t, dir, "seed.yaml", seedRecords)
	q := writeFile(t, dir, "contacts.xml", contactsByName)

	out, err := execute(NewQueryCommand(&RootOptions{Format: "json"}), q, "--fixtures", seed)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   QueryOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "contact", resp.Data.Entity)
	assert.True(t, resp.Data.MoreRecords)
	assert.Equal(t, -1, resp.Data.TotalRecordCount)
	require.Len(t, resp.Data.Records, 2)

	first := resp.Data.Records[0]
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", first.ID)
	assert.JSONEq(t,
		`{"firstname":{"t":"string","v":"Al"},"statuscode":{"t":"option","v":2,"name":"Inactive"}}`,
		string(first.Attributes))
	assert.Equal(t, map[string]string{"statuscode": "Inactive"}, first.Formatted)
}

func TestQueryDescriptor(t *testing.T) {
	dir := t.TempDir()
	seed := writeFile(t, dir, "seed.yaml", seedRecords)
	q := writeFile(t, dir, "active.yaml", `
entity: contact
columns: [firstname]
criteria:
  conditions:
    - {attribute: statuscode, operator: eq, value: 1}
orders: [{attribute: firstname, descending: true}]
`)

	out, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), q, "--fixtures", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "firstname=Charlie")
	assert.Contains(t, out, "firstname=Bob")
	assert.NotContains(t, out, "firstname=Al")
	assert.Contains(t, out, "2 record(s)\n")
}

func TestQueryWritesSpreadsheet(t *testing.T) {
	dir := t.TempDir()
	seed := writeFile(t, dir, "seed.yaml", seedRecords)
	q := writeFile(t, dir, "contacts.xml", contactsByName)
	xlsx := filepath.Join(dir, "out.xlsx")

	_, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), q, "--fixtures", seed, "--xlsx", xlsx)
	require.NoError(t, err)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("contact")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "firstname", "statuscode"}, rows[0])
	assert.Equal(t, "Al", rows[1][1])
	assert.Equal(t, "Inactive", rows[1][2])
}

func TestQueryFaultExitsWithFailure(t *testing.T) {
	dir := t.TempDir()
	q := writeFile(t, dir, "bad.xml", `<fetch><entity name="contact">
  <filter><condition attribute="firstname" operator="approx" value="x" /></filter>
</entity></fetch>`)

	out, err := execute(NewQueryCommand(&RootOptions{Format: "json"}), q)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MALFORMED_QUERY", resp.Error.Code)
}

func TestQueryCommandErrors(t *testing.T) {
	dir := t.TempDir()
	q := writeFile(t, dir, "contacts.xml", contactsByName)
	badSeed := writeFile(t, dir, "bad.yaml", "records:\n  - entity: contact\n    bogus: 1\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing query file", []string{filepath.Join(dir, "nope.xml")}, ExitCommandError},
		{"missing fixture file", []string{q, "--fixtures", filepath.Join(dir, "nope.yaml")}, ExitCommandError},
		{"invalid fixture", []string{q, "--fixtures", badSeed}, ExitCommandError},
		{"missing metadata dir", []string{q, "--metadata", filepath.Join(dir, "nope")}, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
		})
	}
}

func TestQueryInvalidDescriptorExitsWithFailure(t *testing.T) {
	dir := t.TempDir()
	q := writeFile(t, dir, "q.yaml", "columns: all\n")

	_, err := execute(NewQueryCommand(&RootOptions{Format: "text"}), q)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "entity is required")
}
