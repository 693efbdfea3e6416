// Package release builds the top-level manifest that checksums the
// per-architecture index files under a release root.
package release

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/debstage/debstage/internal/layout"
)

// ErrNoIndexFiles reports that the release root holds nothing to
// checksum, so no valid manifest can be produced.
var ErrNoIndexFiles = errors.New("no per-architecture index files found")

// Params are the manifest preamble values. Architectures are joined in
// the given order; callers that want a sorted line pass a sorted list.
type Params struct {
	Suite         string
	Origin        string
	Label         string
	Component     string
	Architectures []string
	Date          time.Time
	Workers       int
}

type fileSum struct {
	relPath string
	size    int64
	sha256  string
	err     error
}

// Build scans releaseRoot for files named "Packages", digests them,
// and returns the manifest text. Discovery order is lexicographic by
// path so reruns over unchanged input emit identical manifests.
// Digesting runs concurrently; line order stays the traversal order.
func Build(releaseRoot string, p Params) (string, error) {
	paths, err := findIndexFiles(releaseRoot)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("%s: %w", releaseRoot, ErrNoIndexFiles)
	}

	sums := digestAll(releaseRoot, paths, p.Workers)
	for _, s := range sums {
		if s.err != nil {
			return "", fmt.Errorf("checksumming %s: %w", s.relPath, s.err)
		}
		if s.size == 0 {
			return "", fmt.Errorf("index file %s is empty", s.relPath)
		}
	}

	var b strings.Builder
	if p.Origin != "" {
		fmt.Fprintf(&b, "Origin: %s\n", p.Origin)
	}
	if p.Label != "" {
		fmt.Fprintf(&b, "Label: %s\n", p.Label)
	}
	fmt.Fprintf(&b, "Suite: %s\n", p.Suite)
	fmt.Fprintf(&b, "Architectures: %s\n", strings.Join(p.Architectures, " "))
	fmt.Fprintf(&b, "Components: %s\n", p.Component)
	fmt.Fprintf(&b, "Date: %s\n", p.Date.UTC().Format(time.RFC3339))
	b.WriteString("SHA256:\n")
	for _, s := range sums {
		fmt.Fprintf(&b, " %s %d %s\n", s.sha256, s.size, s.relPath)
	}
	return b.String(), nil
}

// findIndexFiles walks the release root for files literally named
// "Packages" and returns their paths relative to the root, sorted.
// WalkDir visits lexically already; the explicit sort keeps the
// ordering contract independent of the traversal primitive.
func findIndexFiles(releaseRoot string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(releaseRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != layout.PackagesName {
			return nil
		}
		rel, err := filepath.Rel(releaseRoot, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", releaseRoot, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func digestAll(releaseRoot string, relPaths []string, workers int) []fileSum {
	if workers < 1 {
		workers = 1
	}

	sums := make([]fileSum, len(relPaths))
	jobs := make(chan int, len(relPaths))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sums[i] = digestOne(releaseRoot, relPaths[i])
			}
		}()
	}
	for i := range relPaths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return sums
}

// digestOne hashes the file's text content as stored; the digest must
// match the bytes that will actually be served.
func digestOne(releaseRoot, relPath string) fileSum {
	data, err := os.ReadFile(filepath.Join(releaseRoot, filepath.FromSlash(relPath)))
	if err != nil {
		return fileSum{relPath: relPath, err: err}
	}
	sum := sha256.Sum256(data)
	return fileSum{
		relPath: relPath,
		size:    int64(len(data)),
		sha256:  hex.EncodeToString(sum[:]),
	}
}
