package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion records the build version, commit and date. Only the
// version string is displayed by --version; commit and date are stored
// but not shown. Typically called by the main package with values
// injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the swapnet CLI and returns an error if any command
// fails. The root command wires the --verbose flag into a logger that
// travels on the command context.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "swapnet",
		Short:        "swapnet routes demands over entanglement distribution networks",
		Long: `swapnet builds quantum repeater topologies, routes point-to-point and
multi-destination demands over their EPR-pair capacities, and exports the
resulting networks for inspection.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newRouteCmd())
	root.AddCommand(newExportCmd())

	return root.ExecuteContext(ctx)
}
