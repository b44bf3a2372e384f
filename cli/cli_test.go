package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "github.com/urfave/cli/v2"
)

func TestRunRejectsMissingLogFile(t *testing.T) {
	err := App.Run([]string{"llq", filepath.Join(t.TempDir(), "does-not-exist.ndjson")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open log file")
}

func TestRunShowsHelpWithNoArgs(t *testing.T) {
	err := App.Run([]string{"llq"})
	assert.NoError(t, err)
}

func TestRunShowsHelpWithTooManyArgs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ndjson")
	b := filepath.Join(dir, "b.ndjson")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	err := App.Run([]string{"llq", a, b})
	assert.NoError(t, err)
}

func TestAppName(t *testing.T) {
	assert.Equal(t, "llq", App.Name)
	var _ *cli.App = App
}
