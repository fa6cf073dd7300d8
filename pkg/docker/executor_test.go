package docker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrepareWorkspaceWritesFiles(t *testing.T) {
	dir, err := prepareWorkspace(map[string]string{"main.py": "print(1)", "input.txt": "3\n"})
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	source, err := os.ReadFile(filepath.Join(dir, "main.py"))
	require.NoError(t, err)
	require.Equal(t, "print(1)", string(source))

	input, err := os.ReadFile(filepath.Join(dir, "input.txt"))
	require.NoError(t, err)
	require.Equal(t, "3\n", string(input))
}

func TestPrepareWorkspaceRejectsNestedPaths(t *testing.T) {
	_, err := prepareWorkspace(map[string]string{"../escape.sh": "rm -rf /"})
	require.Error(t, err)
}
