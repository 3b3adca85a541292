package cli

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/entglab/swapnet/pkg/errors"
	"github.com/entglab/swapnet/pkg/qnet"
)

// Result is the manifest emitted by the route command.
type Result struct {
	RunID          string       `json:"run_id"`
	NumNodes       int          `json:"num_nodes"`
	NumEdges       int          `json:"num_edges"`
	CapacityBefore float64      `json:"capacity_before"`
	CapacityAfter  float64      `json:"capacity_after"`
	Flows          []FlowResult `json:"flows,omitempty"`
	Apps           []AppResult  `json:"apps,omitempty"`
}

// FlowResult reports one routed flow.
type FlowResult struct {
	Src           int     `json:"src"`
	Dst           int     `json:"dst"`
	Path          []int   `json:"path,omitempty"`
	GrossRate     float64 `json:"gross_rate"`
	NetRate       float64 `json:"net_rate"`
	DijkstraCalls int     `json:"dijkstra_calls"`
}

// AppResult reports one routed app.
type AppResult struct {
	Src         int                  `json:"src"`
	GrossRate   float64              `json:"gross_rate"`
	NetRate     float64              `json:"net_rate"`
	Visits      int                  `json:"visits"`
	Allocations map[int][]PathResult `json:"allocations,omitempty"`
}

// PathResult reports one allocated path of an app target.
type PathResult struct {
	Hops      []int   `json:"hops"`
	GrossRate float64 `json:"gross_rate"`
	NetRate   float64 `json:"net_rate"`
}

// newRouteCmd runs a scenario: build the network, route its flows and
// apps, and emit a JSON result manifest.
func newRouteCmd() *cobra.Command {
	var (
		output string
		dotOut string
	)

	cmd := &cobra.Command{
		Use:   "route <scenario.toml>",
		Short: "Route the demands of a scenario over its network",
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

			result := Result{
				RunID:          uuid.NewString(),
				NumNodes:       network.NumNodes(),
				NumEdges:       network.NumEdges(),
				CapacityBefore: network.TotalCapacity(),
			}
			logger.Info("network ready", "run", result.RunID,
				"nodes", result.NumNodes, "edges", result.NumEdges, "capacity", result.CapacityBefore)

			if len(scenario.Flows) > 0 {
				p := newProgress(logger, "routed flows")
				flows := make([]*qnet.FlowDescriptor, len(scenario.Flows))
				for i, f := range scenario.Flows {
					flows[i] = &qnet.FlowDescriptor{Src: f.Src, Dst: f.Dst, MinGrossRate: f.MinGrossRate}
				}
				if err := network.RouteFlows(flows, nil); err != nil {
					return err
				}
				admitted := 0
				for _, f := range flows {
					if len(f.Path) > 0 {
						admitted++
					}
					result.Flows = append(result.Flows, FlowResult{
						Src:           f.Src,
						Dst:           f.Dst,
						Path:          f.Path,
						GrossRate:     f.GrossRate,
						NetRate:       f.NetRate(network.MeasurementProbability()),
						DijkstraCalls: f.DijkstraCalls,
					})
				}
				p.done("admitted", admitted, "total", len(flows))
			}

			if len(scenario.Apps) > 0 {
				p := newProgress(logger, "routed apps")
				apps := make([]*qnet.AppDescriptor, len(scenario.Apps))
				for i, a := range scenario.Apps {
					apps[i] = &qnet.AppDescriptor{Src: a.Src, Targets: a.Targets, Priority: a.Priority}
				}
				if err := network.RouteApps(apps, scenario.Routing.PathLengthFactor, scenario.Routing.NumPaths); err != nil {
					return err
				}
				for _, a := range apps {
					ar := AppResult{
						Src:         a.Src,
						GrossRate:   a.GrossRate(),
						NetRate:     a.NetRate(),
						Visits:      a.Visits,
						Allocations: make(map[int][]PathResult),
					}
					for target, allocs := range a.Allocated {
						for _, alloc := range allocs {
							ar.Allocations[target] = append(ar.Allocations[target], PathResult{
								Hops:      alloc.Hops,
								GrossRate: alloc.GrossRate,
								NetRate:   alloc.NetRate,
							})
						}
					}
					result.Apps = append(result.Apps, ar)
				}
				p.done("apps", len(apps))
			}

			result.CapacityAfter = network.TotalCapacity()

			if dotOut != "" {
				if err := network.WriteDotFile(dotOut); err != nil {
					return err
				}
			}
			return writeResult(&result, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the JSON result here (default stdout)")
	cmd.Flags().StringVar(&dotOut, "dot", "", "dump the residual network to this DOT file")

	return cmd
}

func writeResult(result *Result, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "creating %s", path)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
