// Package assembler runs the assemble pipeline: read every per-release
// fragment under pool/, group entries by architecture, regenerate the
// dists/ tree, and build (optionally sign) the Release manifest.
package assembler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/debstage/debstage/internal/archgroup"
	"github.com/debstage/debstage/internal/compressor"
	"github.com/debstage/debstage/internal/config"
	"github.com/debstage/debstage/internal/controlfile"
	"github.com/debstage/debstage/internal/layout"
	"github.com/debstage/debstage/internal/release"
	"github.com/debstage/debstage/internal/signer"
	"github.com/debstage/debstage/internal/utils/logger"
)

// ErrNoFragments reports that pool/ holds no checksum records to
// assemble from.
var ErrNoFragments = errors.New("no fragments found under pool/")

// Options configure one assemble run.
type Options struct {
	Output string
	Config config.Config

	// Compressors produce the compressed index siblings. Nil selects
	// xz and gzip.
	Compressors []compressor.Compressor

	// Signer is required when Sign is set.
	Sign   bool
	Signer signer.Signer

	// Now overrides the manifest timestamp; zero means time.Now.
	Now time.Time
}

// Run assembles the dists/ tree from the pool fragments. Everything
// under dists/<suite> is regenerated from scratch; the pool fragments
// are the durable state.
func Run(opts Options) error {
	log := logger.Logger()

	if opts.Sign && opts.Signer == nil {
		return signer.ErrNoKey
	}
	compressors := opts.Compressors
	if compressors == nil {
		compressors = []compressor.Compressor{compressor.XZ{}, compressor.Gzip{}}
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	fragments, err := readFragments(opts.Output)
	if err != nil {
		return err
	}

	groups, err := archgroup.Group(fragments)
	if err != nil {
		return err
	}
	if groups.Dropped > 0 {
		log.Warnf("dropped %d entries without an Architecture field", groups.Dropped)
	}

	cfg := opts.Config
	lay := layout.Layout{Root: opts.Output, Suite: cfg.Suite, Component: cfg.Component}
	if err := os.RemoveAll(lay.DistsDir()); err != nil {
		return fmt.Errorf("clearing %s: %w", lay.DistsDir(), err)
	}

	archs := groups.Architectures()
	for _, arch := range archs {
		if err := writeArchIndex(lay, arch, groups.Entries(arch), compressors); err != nil {
			return err
		}
	}
	log.Infof("wrote indices for architectures: %v", archs)

	manifest, err := release.Build(lay.DistsDir(), release.Params{
		Suite:         cfg.Suite,
		Origin:        cfg.Origin,
		Label:         cfg.Label,
		Component:     cfg.Component,
		Architectures: archs,
		Date:          now,
		Workers:       cfg.Workers,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(lay.ReleasePath(), []byte(manifest), 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	log.Infof("wrote manifest %s", lay.ReleasePath())

	if !opts.Sign {
		return nil
	}
	if err := opts.Signer.DetachSign(lay.ReleasePath(), lay.DetachedSigPath()); err != nil {
		return err
	}
	if err := opts.Signer.ClearSign(lay.ReleasePath(), lay.InReleasePath()); err != nil {
		return err
	}
	log.Infof("signed manifest: %s, %s", lay.DetachedSigPath(), lay.InReleasePath())
	return nil
}

// readFragments loads every pool/<owner>/<repo>/<tag>/Packages file in
// lexicographic path order.
func readFragments(output string) ([]string, error) {
	pattern := filepath.Join(output, "pool", "*", "*", "*", layout.PackagesName)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", output, ErrNoFragments)
	}

	fragments := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading fragment %s: %w", p, err)
		}
		fragments = append(fragments, string(data))
	}
	return fragments, nil
}

func writeArchIndex(lay layout.Layout, arch string, blocks []string, compressors []compressor.Compressor) error {
	dir := lay.BinaryDir(arch)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	text := controlfile.SerializeBlocks(blocks)
	path := filepath.Join(dir, layout.PackagesName)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("generated index %s is empty", path)
	}

	for _, c := range compressors {
		if _, err := c.Compress(path); err != nil {
			return err
		}
	}
	return nil
}
