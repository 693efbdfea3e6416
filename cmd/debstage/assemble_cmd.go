package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/debstage/debstage/internal/assembler"
	"github.com/debstage/debstage/internal/config"
	"github.com/debstage/debstage/internal/signer"
	"github.com/debstage/debstage/internal/utils/logger"
)

// signingKeyEnv holds an armored OpenPGP private key; it takes
// precedence over the signing_key_file config setting.
const signingKeyEnv = "DEBSTAGE_SIGNING_KEY"

var (
	assembleOutput string
	assembleSign   bool
)

// createAssembleCommand creates the assemble subcommand
func createAssembleCommand() *cobra.Command {
	assembleCmd := &cobra.Command{
		Use:   "assemble [flags]",
		Short: "Assemble the dists/ tree from the recorded pool fragments",
		Long: `Assemble reads every per-release Packages fragment under pool/,
groups entries by architecture, regenerates the per-architecture
indices (plus .xz and .gz variants), and builds the Release manifest.
With --sign it also produces Release.gpg and InRelease.`,
		Args: cobra.NoArgs,
		RunE: executeAssemble,
	}

	addOutputFlag(assembleCmd.Flags(), &assembleOutput)
	assembleCmd.Flags().BoolVar(&assembleSign, "sign", false,
		"Sign the Release manifest (requires key material)")
	return assembleCmd
}

// executeAssemble handles the assemble command execution logic
func executeAssemble(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	cfg, err := config.Load(config.DefaultFileName)
	if err != nil {
		return err
	}

	opts := assembler.Options{
		Output: assembleOutput,
		Config: cfg,
		Sign:   assembleSign,
	}
	if assembleSign {
		key, err := loadSigningKey(cfg)
		if err != nil {
			return err
		}
		opts.Signer, err = signer.New(key)
		if err != nil {
			return err
		}
	}

	log.Infof("assembling %s (suite %s, component %s)", assembleOutput, cfg.Suite, cfg.Component)
	return assembler.Run(opts)
}

func loadSigningKey(cfg config.Config) ([]byte, error) {
	if key := os.Getenv(signingKeyEnv); key != "" {
		return []byte(key), nil
	}
	if cfg.SigningKeyFile != "" {
		key, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading signing key file: %w", err)
		}
		return key, nil
	}
	return nil, signer.ErrNoKey
}
