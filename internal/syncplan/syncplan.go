// Package syncplan decides, per remote asset, whether the local pool
// already holds its current content, and downloads what is missing.
package syncplan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/debstage/debstage/internal/utils/logger"
)

// Asset is one downloadable artifact of a remote release.
type Asset struct {
	Name string
	URL  string

	// Digest is the raw "<algorithm>:<hex>" tag reported by the
	// origin, or empty when the origin reports none.
	Digest string
}

// Digest is a parsed content checksum tag.
type Digest struct {
	Algo string
	Hex  string
}

// ParseDigest parses a "<algorithm>:<hex>" tag. The boolean is false
// for empty or malformed input.
func ParseDigest(s string) (Digest, bool) {
	algo, hex, found := strings.Cut(s, ":")
	if !found || algo == "" || hex == "" {
		return Digest{}, false
	}
	return Digest{Algo: strings.ToLower(algo), Hex: hex}, true
}

// UsableSHA256 reports whether the digest can take part in a sha256
// comparison. Other algorithms are surfaced as unusable rather than
// silently dropped so future algorithm changes do not mask skips.
func (d Digest) UsableSHA256() bool {
	return d.Algo == "sha256"
}

// Decision is the sync outcome for one asset. Path is where the
// artifact lives (skip) or will be written (fetch).
type Decision struct {
	Asset Asset
	Path  string
}

// Plan partitions assets into already-verified and to-be-fetched.
type Plan struct {
	Fetch []Decision
	Skip  []Decision
}

// Build partitions assets against the recorded checksum index and the
// target directory. An asset is skipped only when the record and the
// remote agree on a sha256 digest (case-insensitive) AND the file is
// physically present: the record can name a file that was never
// materialized, so a skip is never granted on the record alone.
func Build(assets []Asset, index map[string]string, targetDir string) Plan {
	log := logger.Logger()

	var plan Plan
	for _, asset := range assets {
		target := filepath.Join(targetDir, asset.Name)
		decision := Decision{Asset: asset, Path: target}

		recorded, known := index[asset.Name]
		remote, ok := ParseDigest(asset.Digest)
		switch {
		case !known:
			log.Debugf("%s: no recorded digest, fetching", asset.Name)
		case !ok || !remote.UsableSHA256():
			log.Debugf("%s: remote digest not usable for comparison, fetching", asset.Name)
		case !strings.EqualFold(remote.Hex, recorded):
			log.Debugf("%s: digest changed, fetching", asset.Name)
		case !fileExists(target):
			log.Debugf("%s: recorded but not on disk, fetching", asset.Name)
		default:
			plan.Skip = append(plan.Skip, decision)
			continue
		}
		plan.Fetch = append(plan.Fetch, decision)
	}
	return plan
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Transport retrieves remote bytes. Retries, if any, belong to the
// implementation; this package performs none.
type Transport interface {
	FetchBytes(ctx context.Context, url string) (io.ReadCloser, error)
}

// FetchAll downloads every fetch decision into its target path using a
// bounded pool of workers. The returned paths follow the input order
// regardless of completion order. The first failure (in input order)
// aborts the result with an error naming the asset; files already
// written by the same run are left in place.
func FetchAll(ctx context.Context, toFetch []Decision, transport Transport, workers int) ([]string, error) {
	if len(toFetch) == 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}

	bar := progressbar.NewOptions(len(toFetch),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	jobs := make(chan int, len(toFetch))
	errs := make([]error, len(toFetch))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				d := toFetch[i]
				bar.Describe(fmt.Sprintf("downloading %s", d.Asset.Name))
				errs[i] = fetchOne(ctx, transport, d)
				bar.Add(1)
			}
		}()
	}
	for i := range toFetch {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	bar.Finish()

	paths := make([]string, 0, len(toFetch))
	for i, d := range toFetch {
		if errs[i] != nil {
			return nil, fmt.Errorf("fetching asset %s: %w", d.Asset.Name, errs[i])
		}
		paths = append(paths, d.Path)
	}
	return paths, nil
}

func fetchOne(ctx context.Context, transport Transport, d Decision) error {
	body, err := transport.FetchBytes(ctx, d.Asset.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(d.Path), 0755); err != nil {
		return err
	}
	out, err := os.Create(d.Path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ResolveSkipped returns the on-disk paths of skipped assets in input
// order.
func ResolveSkipped(toSkip []Decision) []string {
	paths := make([]string, 0, len(toSkip))
	for _, d := range toSkip {
		paths = append(paths, d.Path)
	}
	return paths
}
