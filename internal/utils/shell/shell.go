package shell

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/debstage/debstage/internal/utils/logger"
)

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh" // fallback
}

// IsCommandExist checks if a command exists on the host
func IsCommandExist(cmd string) bool {
	shell := getShell()
	output, _ := exec.Command(shell, "-c", "command -v "+cmd).Output()
	return len(bytes.TrimSpace(output)) > 0
}

// ExecCmd executes a command in dir (empty dir means the current
// directory) and returns its combined output. It is a package variable
// so tests can override it without the underlying tool installed.
var ExecCmd = func(cmdStr string, dir string) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", cmdStr)

	shell := getShell()
	cmd := exec.Command(shell, "-c", cmdStr)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	outputStr := string(output)
	if err != nil {
		if outputStr != "" {
			log.Infof(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", cmdStr, err)
	}
	return outputStr, nil
}

// ExecCmdSplit executes a command in dir and returns stdout and stderr
// separately; stderr is only logged. Overridable for tests.
var ExecCmdSplit = func(cmdStr string, dir string) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", cmdStr)

	shell := getShell()
	cmd := exec.Command(shell, "-c", cmdStr)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stderr.Len() > 0 {
		log.Debugf(stderr.String())
	}
	if err != nil {
		return stdout.String(), fmt.Errorf("failed to exec %s: %w", cmdStr, err)
	}
	return stdout.String(), nil
}
