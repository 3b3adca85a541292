package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entglab/swapnet/pkg/qnet"
	"github.com/entglab/swapnet/pkg/rv"
)

// newBuildCmd constructs a random topology and reports its properties,
// optionally exporting it to a file.
func newBuildCmd() *cobra.Command {
	var (
		mu              float64
		gridLength      float64
		threshold       float64
		linkProbability float64
		seed            uint64
		minCapacity     float64
		maxCapacity     float64
		output          string
		format          string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Construct a Poisson point process topology",
		Long: `Build drops repeater sites on a square with a Poisson point process,
links sites within the distance threshold, retries until the topology is
connected, and reports the capacity properties of the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			p := newProgress(logger, "built network")
			src := rv.NewUniform(minCapacity, maxCapacity, seed)
			network, _, err := qnet.NewNetworkPPP(src, seed, mu, gridLength, threshold, linkProbability)
			if err != nil {
				return err
			}

			inLo, inHi := network.InDegree()
			outLo, outHi := network.OutDegree()
			p.done(
				"nodes", network.NumNodes(),
				"edges", network.NumEdges(),
				"capacity", network.TotalCapacity(),
				"in-degree", fmt.Sprintf("%d..%d", inLo, inHi),
				"out-degree", fmt.Sprintf("%d..%d", outLo, outHi),
			)

			if output == "" {
				return nil
			}
			return exportNetwork(network, output, format)
		},
	}

	cmd.Flags().Float64Var(&mu, "mu", 50, "expected number of repeater sites")
	cmd.Flags().Float64Var(&gridLength, "grid-length", 1000, "side of the deployment square")
	cmd.Flags().Float64Var(&threshold, "threshold", 150, "maximum link distance")
	cmd.Flags().Float64Var(&linkProbability, "link-probability", 1, "probability of keeping an in-range link")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&minCapacity, "min-capacity", 1, "lower bound of the capacity draw")
	cmd.Flags().Float64Var(&maxCapacity, "max-capacity", 10, "upper bound of the capacity draw")
	cmd.Flags().StringVarP(&output, "output", "o", "", "export the topology to this file")
	cmd.Flags().StringVar(&format, "format", "dot", "export format: dot, svg or png")

	return cmd
}
