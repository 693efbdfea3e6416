package release

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeIndex(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildManifestDigestCorrectness(t *testing.T) {
	root := t.TempDir()
	content := "Package: tool\nArchitecture: amd64\n"
	writeIndex(t, root, "main/binary-amd64/Packages", content)

	date := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	manifest, err := Build(root, Params{
		Suite:         "stable",
		Component:     "main",
		Architectures: []string{"amd64"},
		Date:          date,
		Workers:       2,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	sum := sha256.Sum256([]byte(content))
	wantLine := fmt.Sprintf(" %s %d main/binary-amd64/Packages", hex.EncodeToString(sum[:]), len(content))
	if !strings.Contains(manifest, wantLine+"\n") {
		t.Errorf("manifest missing checksum line %q:\n%s", wantLine, manifest)
	}

	wantPreamble := "Suite: stable\nArchitectures: amd64\nComponents: main\nDate: 2026-08-24T12:00:00Z\nSHA256:\n"
	if !strings.Contains(manifest, wantPreamble) {
		t.Errorf("manifest preamble wrong:\n%s", manifest)
	}
}

func TestBuildDeterministicFileOrder(t *testing.T) {
	root := t.TempDir()
	writeIndex(t, root, "main/binary-arm64/Packages", "Package: b\n")
	writeIndex(t, root, "main/binary-amd64/Packages", "Package: a\n")
	// files not literally named Packages are ignored
	writeIndex(t, root, "main/binary-amd64/Packages.xz", "binary")

	params := Params{Suite: "stable", Component: "main", Architectures: []string{"amd64", "arm64"}, Date: time.Now()}
	first, err := Build(root, params)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	amdAt := strings.Index(first, "main/binary-amd64/Packages")
	armAt := strings.Index(first, "main/binary-arm64/Packages")
	if amdAt == -1 || armAt == -1 || amdAt > armAt {
		t.Errorf("checksum lines not in lexicographic order:\n%s", first)
	}
	if strings.Contains(first, "Packages.xz") {
		t.Errorf("compressed siblings must not be listed:\n%s", first)
	}

	second, err := Build(root, params)
	if err != nil {
		t.Fatalf("Build rerun failed: %v", err)
	}
	if first != second {
		t.Error("manifest differs across runs over unchanged input")
	}
}

func TestBuildOptionalOriginLabel(t *testing.T) {
	root := t.TempDir()
	writeIndex(t, root, "main/binary-amd64/Packages", "Package: a\n")

	manifest, err := Build(root, Params{
		Suite:         "stable",
		Origin:        "acme",
		Label:         "acme tools",
		Component:     "main",
		Architectures: []string{"amd64"},
		Date:          time.Now(),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.HasPrefix(manifest, "Origin: acme\nLabel: acme tools\nSuite: stable\n") {
		t.Errorf("preamble order wrong:\n%s", manifest)
	}
}

func TestBuildArchitecturesJoinOrder(t *testing.T) {
	root := t.TempDir()
	writeIndex(t, root, "main/binary-amd64/Packages", "Package: a\n")

	// caller order is preserved, not re-sorted
	manifest, err := Build(root, Params{
		Suite:         "stable",
		Component:     "main",
		Architectures: []string{"arm64", "amd64"},
		Date:          time.Now(),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(manifest, "Architectures: arm64 amd64\n") {
		t.Errorf("architectures not in caller order:\n%s", manifest)
	}
}

func TestBuildNoIndexFiles(t *testing.T) {
	_, err := Build(t.TempDir(), Params{Suite: "stable", Date: time.Now()})
	if !errors.Is(err, ErrNoIndexFiles) {
		t.Errorf("expected ErrNoIndexFiles, got %v", err)
	}
}

func TestBuildRejectsEmptyIndex(t *testing.T) {
	root := t.TempDir()
	writeIndex(t, root, "main/binary-amd64/Packages", "")

	_, err := Build(root, Params{Suite: "stable", Component: "main", Date: time.Now()})
	if err == nil {
		t.Fatal("expected error for zero-byte index")
	}
}
