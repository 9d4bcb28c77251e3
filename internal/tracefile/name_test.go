package tracefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseNamePicksSmallestFreeSuffix(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	assert.Equal(t, "app.altrace", ChooseName("app"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.altrace"), nil, 0o644))
	assert.Equal(t, "app.1.altrace", ChooseName("app"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.1.altrace"), nil, 0o644))
	assert.Equal(t, "app.2.altrace", ChooseName("app"))
}
