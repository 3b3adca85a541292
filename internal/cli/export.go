package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/entglab/swapnet/pkg/errors"
	"github.com/entglab/swapnet/pkg/qnet"
)

// newExportCmd renders a scenario's network without routing anything.
func newExportCmd() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export <scenario.toml>",
		Short: "Render a scenario network to DOT, SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			scenario, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			network, _, err := scenario.BuildNetwork()
			if err != nil {
				return err
			}
			if err := exportNetwork(network, output, format); err != nil {
				return err
			}
			logger.Info("exported network", "nodes", network.NumNodes(), "edges", network.NumEdges(), "file", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "network.dot", "output file")
	cmd.Flags().StringVar(&format, "format", "dot", "export format: dot, svg or png")

	return cmd
}

// exportNetwork writes a network to path in the requested format.
func exportNetwork(network *qnet.Network, path, format string) error {
	switch format {
	case "dot":
		return network.WriteDotFile(path)
	case "svg", "png":
		render := qnet.RenderSVG
		if format == "png" {
			render = qnet.RenderPNG
		}
		data, err := render(network.DotString())
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "rendering %s", format)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "writing %s", path)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown export format %q (want dot, svg or png)", format)
	}
}
