// Package scanner wraps the native index-scanning tool that turns a
// directory of .deb files into raw control-file text.
package scanner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/debstage/debstage/internal/utils/shell"
)

// ErrToolMissing reports that the scan tool is not installed.
var ErrToolMissing = errors.New("dpkg-scanpackages not found (install dpkg-dev)")

const scanTool = "dpkg-scanpackages"

// lookTool is a package variable so tests can pretend the tool is (or
// is not) installed.
var lookTool = shell.IsCommandExist

// ScanPackages runs dpkg-scanpackages over poolDir and returns the
// emitted control-file fragment. Filename fields come out relative to
// poolDir ("./name.deb"); only their base names are meaningful here.
func ScanPackages(poolDir string) (string, error) {
	if !lookTool(scanTool) {
		return "", ErrToolMissing
	}

	out, err := shell.ExecCmdSplit(scanTool+" --multiversion .", poolDir)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", poolDir, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("scanning %s: tool produced no entries", poolDir)
	}
	return out, nil
}
