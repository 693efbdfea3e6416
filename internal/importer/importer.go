// Package importer runs the import pipeline: list the latest release's
// .deb assets, decide skip-vs-fetch against the durable checksum
// record, download what is missing, and regenerate the per-release
// control-file fragment.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/debstage/debstage/internal/controlfile"
	"github.com/debstage/debstage/internal/ghrelease"
	"github.com/debstage/debstage/internal/layout"
	"github.com/debstage/debstage/internal/scanner"
	"github.com/debstage/debstage/internal/syncplan"
	"github.com/debstage/debstage/internal/utils/logger"
)

// ErrNoAssets reports that the latest release carries no .deb assets.
var ErrNoAssets = errors.New("release has no .deb assets")

// Source lists releases and streams asset bytes.
type Source interface {
	LatestRelease(ctx context.Context, owner, repo string) (ghrelease.Release, error)
	syncplan.Transport
}

// Options configure one import run.
type Options struct {
	RepoID  string
	Output  string
	Workers int

	// Scan converts a pool directory into control-file text. Nil
	// selects the dpkg-scanpackages tool.
	Scan func(poolDir string) (string, error)
}

// Run imports the latest release of one repository into the pool.
func Run(ctx context.Context, src Source, opts Options) error {
	log := logger.Logger()

	owner, repo, err := ghrelease.ParseRepoID(opts.RepoID)
	if err != nil {
		return err
	}
	scan := opts.Scan
	if scan == nil {
		scan = scanner.ScanPackages
	}

	rel, err := src.LatestRelease(ctx, owner, repo)
	if err != nil {
		return err
	}
	log.Infof("latest release of %s/%s is %s with %d assets", owner, repo, rel.Tag, len(rel.Assets))

	debs := filterDebs(rel.Assets)
	if len(debs) == 0 {
		return fmt.Errorf("%s/%s %s: %w", owner, repo, rel.Tag, ErrNoAssets)
	}

	lay := layout.Layout{Root: opts.Output}
	poolDir := lay.PoolDir(owner, repo, rel.Tag)
	if err := os.MkdirAll(poolDir, 0755); err != nil {
		return fmt.Errorf("creating pool directory %s: %w", poolDir, err)
	}

	fragPath := lay.FragmentPath(owner, repo, rel.Tag)
	index := controlfile.LoadChecksumIndex(fragPath)

	plan := syncplan.Build(debs, index, poolDir)
	log.Infof("%d assets up to date, %d to fetch", len(plan.Skip), len(plan.Fetch))

	fetched, err := syncplan.FetchAll(ctx, plan.Fetch, src, opts.Workers)
	if err != nil {
		return err
	}
	local := append(fetched, syncplan.ResolveSkipped(plan.Skip)...)
	log.Debugf("%d artifacts available in %s", len(local), poolDir)

	fragment, err := scan(poolDir)
	if err != nil {
		return err
	}
	if err := writeFragment(fragPath, fragment); err != nil {
		return err
	}
	log.Infof("wrote fragment %s (%d entries)", fragPath, len(controlfile.ParseFragment(fragment)))
	return nil
}

func filterDebs(assets []syncplan.Asset) []syncplan.Asset {
	var debs []syncplan.Asset
	for _, a := range assets {
		if strings.HasSuffix(a.Name, ".deb") {
			debs = append(debs, a)
		}
	}
	return debs
}

// writeFragment replaces the checksum record atomically so an
// interrupted run never leaves a truncated record behind.
func writeFragment(path, fragment string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".Packages-*")
	if err != nil {
		return fmt.Errorf("writing fragment %s: %w", path, err)
	}
	if _, err := tmp.WriteString(fragment); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing fragment %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing fragment %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing fragment %s: %w", path, err)
	}
	return nil
}
