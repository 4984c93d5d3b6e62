package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seistrack/famview/internal/application/occurrence"
)

// overviewView wraps the overview series for text output.
type overviewView struct {
	*occurrence.Overview
}

func (v overviewView) String() string {
	events := 0
	for _, p := range v.Rate {
		events += p.Orphans + p.Repeaters
	}
	return fmt.Sprintf("window [%.2f, %.2f]: %d rate bins (%d events), %d fi points, %d families",
		v.Window.Min, v.Window.Max, len(v.Rate), events, len(v.FI), len(v.Longevity))
}

// NewOverviewCmd computes the catalog-wide overview series.
func NewOverviewCmd() *cobra.Command {
	opts := &layoutOptions{}

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Compute the catalog-wide rate, frequency-index, and longevity series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			overview, err := cliCtx.Occurrence.Overview(cmd.Context(), &occurrence.OverviewInput{
				Window:       opts.window(cliCtx),
				BinWidthDays: opts.binWidth(cliCtx),
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, overviewView{overview})
		},
	}

	opts.registerWindowFlags(cmd)
	return cmd
}
