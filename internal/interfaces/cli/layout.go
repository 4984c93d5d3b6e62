package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seistrack/famview/internal/application/occurrence"
	"github.com/seistrack/famview/internal/domain/timeline"
	"github.com/seistrack/famview/pkg/errors"
)

// layoutOptions holds the flags shared by the timeline commands.
type layoutOptions struct {
	Min        float64
	Max        float64
	BinWidth   float64
	Padding    float64
	MinMembers int
	Mode       string
	FILow      float64
	FIHigh     float64
}

func (o *layoutOptions) registerWindowFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&o.Min, "min", 0, "window start (days)")
	f.Float64Var(&o.Max, "max", 0, "window end (days)")
	f.Float64Var(&o.BinWidth, "bin-width", 0, "bin width in days (default: config)")
	f.Float64Var(&o.Padding, "padding", -1, "window padding in days (default: config)")
	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")
}

func (o *layoutOptions) window(cliCtx *CLIContext) timeline.TimeWindow {
	padding := o.Padding
	if padding < 0 {
		padding = cliCtx.Config.Timeline.PaddingDays
	}
	return timeline.TimeWindow{Min: o.Min, Max: o.Max, Padding: padding}
}

func (o *layoutOptions) binWidth(cliCtx *CLIContext) float64 {
	if o.BinWidth > 0 {
		return o.BinWidth
	}
	return cliCtx.Config.Timeline.BinWidthDays
}

// layoutView wraps the service result for table output.
type layoutView struct {
	*occurrence.LayoutResult
}

func (v layoutView) TableHeaders() []string {
	return []string{"ROW", "FAMILY", "EVENTS", "BLOCKS", "X1", "X2"}
}

func (v layoutView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Layout.Rows))
	for _, r := range v.Layout.Rows {
		rows = append(rows, []string{
			strconv.Itoa(r.Row),
			strconv.FormatInt(r.Family, 10),
			strconv.Itoa(r.Count),
			strconv.Itoa(len(r.Blocks)),
			strconv.FormatFloat(r.Lifespan.X1, 'f', 2, 64),
			strconv.FormatFloat(r.Lifespan.X2, 'f', 2, 64),
		})
	}
	return rows
}

func (v layoutView) String() string {
	return fmt.Sprintf("%d family rows, %d excluded, %d skipped",
		len(v.Layout.Rows), len(v.Layout.Excluded), len(v.Skipped))
}

// NewLayoutCmd computes the per-family occupancy layout.
func NewLayoutCmd() *cobra.Command {
	opts := &layoutOptions{}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the per-family occurrence layout over a time window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			mode := occurrence.ScoringMode(opts.Mode)
			switch mode {
			case "", occurrence.ScoreByRate, occurrence.ScoreByFI:
			default:
				return errors.New(errors.ErrCodeBadRequest,
					fmt.Sprintf("unknown scoring mode %q", opts.Mode))
			}

			fiLow, fiHigh := opts.FILow, opts.FIHigh
			if fiLow == 0 && fiHigh == 0 {
				fiLow = cliCtx.Config.Timeline.FILow
				fiHigh = cliCtx.Config.Timeline.FIHigh
			}

			result, err := cliCtx.Occurrence.Layout(cmd.Context(), &occurrence.LayoutInput{
				Window:       opts.window(cliCtx),
				BinWidthDays: opts.binWidth(cliCtx),
				MinMembers:   opts.MinMembers,
				Mode:         mode,
				FILow:        fiLow,
				FIHigh:       fiHigh,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, layoutView{result})
		},
	}

	opts.registerWindowFlags(cmd)
	f := cmd.Flags()
	f.IntVar(&opts.MinMembers, "min-members", 0, "exclude families below this member count")
	f.StringVar(&opts.Mode, "mode", "rate", "bin colouring mode (rate, fi)")
	f.Float64Var(&opts.FILow, "fi-low", 0, "frequency-index colour floor (default: config)")
	f.Float64Var(&opts.FIHigh, "fi-high", 0, "frequency-index colour ceiling (default: config)")

	return cmd
}
