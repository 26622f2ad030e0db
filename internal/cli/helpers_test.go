package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const seedRecords = `records:
  - entity: contact
    id: 00000000-0000-0000-0000-000000000001
    attributes: {firstname: Charlie, statuscode: {option: {value: 1, name: Active}}}
  - entity: contact
    id: 00000000-0000-0000-0000-000000000002
    attributes: {firstname: Al, statuscode: {option: {value: 2, name: Inactive}}}
  - entity: contact
    id: 00000000-0000-0000-0000-000000000003
    attributes: {firstname: Bob, statuscode: {option: {value: 1, name: Active}}}
`

const contactsByName = `<fetch count="2">
  <entity name="contact">
    <attribute name="firstname" />
    <attribute name="statuscode" />
    <order attribute="firstname" />
  </entity>
</fetch>`

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
