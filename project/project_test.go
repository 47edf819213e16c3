package project_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taintflow/ifc/project"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectFindsModuleRootAndSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/demo\n\ngo 1.23\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "sub", "helper.go"), "package sub\n")

	d := project.NewDetector()
	proj, err := d.Detect(context.Background(), filepath.Join(root, "main.go"))
	require.NoError(t, err)
	require.Equal(t, root, proj.RootPath)
	require.Equal(t, "example.com/demo", proj.Module)
	require.Len(t, proj.SourceURLs, 2)
}

func TestDetectFallsBackToStartDirWithoutMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "only.go"), "package main\n")

	d := project.NewDetector()
	proj, err := d.Detect(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, root, proj.RootPath)
	require.Empty(t, proj.Module)
	require.Len(t, proj.SourceURLs, 1)
}
