package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openipdata/grantfeed/internal/extraction"
)

func runExtract(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newExtractCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExtractCommand_APSFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pftaps19900101_wk01.txt")
	content := "PATN\nPNO  12345\nTTL  A Widget\nCLMS\nNUM  1.\nPA1  A widget comprising X.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	stdout, stderr, err := runExtract(t, path)

	require.NoError(t, err)
	assert.Contains(t, stdout, `"A Widget"`)
	assert.Contains(t, stdout, `"12345"`)
	assert.Contains(t, stderr, "1 records")
}

func TestExtractCommand_DialectOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unnamed.dat")
	content := `<us-patent-grant lang="EN" country="US"><claims><claim><claim-text>A claim.</claim-text></claim></claims></us-patent-grant>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	stdout, _, err := runExtract(t, "--dialect", "ice", path)

	require.NoError(t, err)
	assert.Contains(t, stdout, `"EN"`)
}

func TestExtractCommand_UnknownNamingScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unnamed.dat")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	_, _, err := runExtract(t, path)

	require.Error(t, err)
}

func TestExtractCommand_MissingFile(t *testing.T) {
	_, _, err := runExtract(t, filepath.Join(t.TempDir(), "absent.txt"))

	require.Error(t, err)
}

func TestParseDialect(t *testing.T) {
	d, err := parseDialect("aps")
	require.NoError(t, err)
	assert.Equal(t, extraction.DialectAPS, d)

	_, err = parseDialect("xml")
	require.Error(t, err)
}
