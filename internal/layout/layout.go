// Package layout computes the on-disk paths of the repository tree so
// the other components agree on the convention without duplicating it.
// It performs no I/O.
package layout

import "path/filepath"

// PackagesName is the index filename used for both per-release
// fragments and per-architecture aggregated indices.
const PackagesName = "Packages"

// Layout resolves paths under one output root for one suite/component.
type Layout struct {
	Root      string
	Suite     string
	Component string
}

// PoolDir is the flat per-release artifact directory. The layout is
// intentionally not Debian's hashed pool: one directory per release
// keeps the hosting redirect rules minimal.
func (l Layout) PoolDir(owner, repo, tag string) string {
	return filepath.Join(l.Root, "pool", owner, repo, tag)
}

// FragmentPath is the durable per-release checksum record.
func (l Layout) FragmentPath(owner, repo, tag string) string {
	return filepath.Join(l.PoolDir(owner, repo, tag), PackagesName)
}

// DistsDir is the release root holding the manifest and the
// per-architecture indices.
func (l Layout) DistsDir() string {
	return filepath.Join(l.Root, "dists", l.Suite)
}

// BinaryDir is the per-architecture index directory.
func (l Layout) BinaryDir(arch string) string {
	return filepath.Join(l.DistsDir(), l.Component, "binary-"+arch)
}

// ReleasePath is the top-level manifest file.
func (l Layout) ReleasePath() string {
	return filepath.Join(l.DistsDir(), "Release")
}

// DetachedSigPath is the detached manifest signature.
func (l Layout) DetachedSigPath() string {
	return filepath.Join(l.DistsDir(), "Release.gpg")
}

// InReleasePath is the clear-signed manifest.
func (l Layout) InReleasePath() string {
	return filepath.Join(l.DistsDir(), "InRelease")
}
