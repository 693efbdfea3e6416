package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/debstage/debstage/internal/utils/logger"
)

var verbose bool

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "debstage",
		Short: "Stage GitHub release .deb assets into a servable apt repository",
		Long: `debstage maintains the metadata layer of an apt repository whose
.deb payloads stay hosted as GitHub release assets. "import" syncs a
repository's latest release into the pool and records checksums;
"assemble" regenerates the per-architecture indices and the Release
manifest from the recorded pool state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(verbose); err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			logger.Logger().Debugf("run id %s", uuid.NewString())
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.AddCommand(createImportCommand())
	rootCmd.AddCommand(createAssembleCommand())
	return rootCmd
}

// addOutputFlag keeps the shared --output flag identical across
// subcommands.
func addOutputFlag(fs *pflag.FlagSet, out *string) {
	fs.StringVar(out, "output", "./apt-repo",
		"Output directory holding the repository tree")
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
