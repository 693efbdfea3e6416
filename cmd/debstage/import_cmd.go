package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/debstage/debstage/internal/config"
	"github.com/debstage/debstage/internal/ghrelease"
	"github.com/debstage/debstage/internal/importer"
	"github.com/debstage/debstage/internal/utils/logger"
)

var (
	importOutput string
	importToken  string
)

// createImportCommand creates the import subcommand
func createImportCommand() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import [flags] OWNER/REPO",
		Short: "Import the latest release's .deb assets into the pool",
		Long: `Import lists the .deb assets of the repository's latest GitHub
release, downloads the ones whose content is not already recorded in
the pool, and regenerates the per-release Packages fragment that acts
as the durable checksum record.`,
		Args: cobra.ExactArgs(1),
		RunE: executeImport,
	}

	addOutputFlag(importCmd.Flags(), &importOutput)
	importCmd.Flags().StringVar(&importToken, "token", "",
		"GitHub API token (defaults to $GITHUB_TOKEN)")
	return importCmd
}

// executeImport handles the import command execution logic
func executeImport(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	cfg, err := config.Load(config.DefaultFileName)
	if err != nil {
		return err
	}

	token := importToken
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		log.Warn("no GitHub token provided, API requests are rate-limited")
	}

	log.Infof("importing %s into %s", args[0], importOutput)
	return importer.Run(cmd.Context(), ghrelease.NewClient(token), importer.Options{
		RepoID:  args[0],
		Output:  importOutput,
		Workers: cfg.Workers,
	})
}
