package eis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory(t *testing.T) {
	fixture, err := os.ReadFile(fixtureDTA)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{
		"B6T10V0_Chan001_Cycle001_Step014.DTA",
		"B6T10V0_Chan001_Cycle003_Step014.DTA",
		"B6T10V0_Chan002_Cycle001_Step014.DTA",
		"notes.DTA", // no identity tokens, skipped
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), fixture, 0o644))
	}

	cells, err := NewLoader(nil).LoadDirectory(dir, 0.5)
	require.NoError(t, err)
	require.Len(t, cells, 2)

	require.Equal(t, 1, cells[0].CellNumber)
	require.Equal(t, 2, cells[0].Len())
	assert.Equal(t, 1, cells[0].Cycles()[0].CycleIndex)
	assert.Equal(t, 3, cells[0].Cycles()[1].CycleIndex)
	require.Equal(t, 1, cells[0].Cycles()[0].Len())
	assert.Equal(t, 16, cells[0].Cycles()[0].Sweeps()[0].Points())
	assert.Equal(t, 14, cells[0].Cycles()[0].Sweeps()[0].StepIndex)

	assert.Equal(t, 2, cells[1].CellNumber)
	assert.Equal(t, 1, cells[1].Len())
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, err := NewLoader(nil).LoadDirectory(filepath.Join(t.TempDir(), "absent"), 0.5)
	assert.Error(t, err)
}
