// Package project discovers which files belong to one analysis run: given a
// starting path, it walks up the directory tree for a project-root marker
// (by default the presence of a go.mod-shaped file) and walks back down to
// collect every candidate source file under that root.
package project

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"golang.org/x/mod/modfile"
)

// Project describes the resolved root of one analysis run: the root
// directory, the module path declared by its go.mod (if any), and the
// source files discovered under it.
type Project struct {
	RootPath   string
	Module     string
	SourceURLs []string
}

// Detector locates a project root by walking up from a starting file or
// directory for one of its marker file names. The marker set is fixed by
// NewDetector (only "go.mod") and cannot be changed from outside the
// package; Extensions can.
type Detector struct {
	fs      afs.Service
	markers []string
	// Extensions lists the file suffixes collected as analyzable source
	// files once a root has been found.
	Extensions []string
}

// NewDetector returns a Detector using the default marker ("go.mod") and
// source extension (".go").
func NewDetector() *Detector {
	return &Detector{
		fs:         afs.New(),
		markers:    []string{"go.mod"},
		Extensions: []string{".go"},
	}
}

// Detect finds the project root for startPath and returns the set of
// analyzable source files under it, sorted for deterministic file ids.
func (d *Detector) Detect(ctx context.Context, startPath string) (*Project, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving absolute path for %s", startPath)
	}

	startDir := absPath
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", absPath)
	}
	if !info.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	root, markerPath := d.findRoot(startDir)
	if root == "" {
		root = startDir
	}

	proj := &Project{RootPath: root}
	if markerPath != "" {
		proj.Module = d.extractModuleName(ctx, markerPath)
	}

	urls, err := d.collectSources(ctx, root)
	if err != nil {
		return nil, err
	}
	proj.SourceURLs = urls
	return proj, nil
}

// findRoot walks up from startDir looking for a marker file, returning the
// containing directory and the marker's own path.
func (d *Detector) findRoot(startDir string) (string, string) {
	dir := startDir
	for {
		for _, marker := range d.markers {
			candidate := filepath.Join(dir, marker)
			if _, err := os.Stat(candidate); err == nil {
				return dir, candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ""
		}
		dir = parent
	}
}

// extractModuleName parses go.mod's module directive via modfile, falling
// back to the marker's containing directory name if it cannot be read or
// parsed (a malformed go.mod should not abort the whole analysis run).
func (d *Detector) extractModuleName(ctx context.Context, goModPath string) string {
	content, err := d.fs.DownloadWithURL(ctx, goModPath)
	if err != nil || len(content) == 0 {
		return filepath.Base(filepath.Dir(goModPath))
	}
	mod, err := modfile.Parse(goModPath, content, nil)
	if err != nil || mod.Module == nil {
		return filepath.Base(filepath.Dir(goModPath))
	}
	return mod.Module.Mod.Path
}

// collectSources walks root for files matching one of d.Extensions, in the
// teacher's AnalyzeDir/analyzePackages style: a storage.OnVisit closure fed
// to fs.Walk, keyed by the joined base URL rather than manual recursion.
func (d *Detector) collectSources(ctx context.Context, root string) ([]string, error) {
	var urls []string
	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && info.Name() != "." {
				return false, nil
			}
			return true, nil
		}
		if !d.hasSourceExtension(info.Name()) {
			return true, nil
		}
		dirURL := url.Join(baseURL, parent)
		urls = append(urls, url.Join(dirURL, info.Name()))
		return true, nil
	}
	if err := d.fs.Walk(ctx, root, storage.OnVisit(visitor)); err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	sort.Strings(urls)
	return urls, nil
}

func (d *Detector) hasSourceExtension(name string) bool {
	for _, ext := range d.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
