package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seistrack/famview/internal/application/report"
	"github.com/seistrack/famview/pkg/errors"
)

// reportView wraps one family report for text output.
type reportView struct {
	*report.FamilyReport
}

func (v reportView) String() string {
	return fmt.Sprintf(
		"family %d: %d members, longevity %.2f days, %d new pairs (%d failed), mean spacing %.1f h, matrix %s",
		v.Family, v.Stats.Members, v.Stats.Longevity,
		v.NewPairs, v.FailedPairs, v.Stats.MeanSpacingHours, v.MatrixPath)
}

// batchView wraps a whole-catalog run for table and text output.
type batchView struct {
	*report.BatchResult
}

func (v batchView) TableHeaders() []string {
	return []string{"FAMILY", "MEMBERS", "NEW PAIRS", "FAILED", "ORDERED"}
}

func (v batchView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Reports))
	for _, rep := range v.Reports {
		rows = append(rows, []string{
			strconv.FormatInt(rep.Family, 10),
			strconv.Itoa(rep.Stats.Members),
			strconv.Itoa(rep.NewPairs),
			strconv.Itoa(rep.FailedPairs),
			strconv.FormatBool(rep.Ordered),
		})
	}
	return rows
}

func (v batchView) String() string {
	return fmt.Sprintf("run %s: %d families reported, %d failed",
		v.RunID, len(v.Reports), len(v.Failed))
}

// NewReportCmd generates family analysis reports.
func NewReportCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "report [familyID]",
		Short: "Generate the analysis report for one family, or --all for every family",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if all {
				if len(args) != 0 {
					return errors.New(errors.ErrCodeBadRequest,
						"--all cannot be combined with a family ID")
				}
				res, err := cliCtx.Report.AllFamilies(cmd.Context())
				if err != nil {
					return err
				}
				return PrintResult(cmd, batchView{res})
			}

			if len(args) != 1 {
				return errors.New(errors.ErrCodeBadRequest,
					"a family ID is required unless --all is given")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.New(errors.ErrCodeBadRequest,
					fmt.Sprintf("family ID %q must be an integer", args[0]))
			}

			rep, err := cliCtx.Report.FamilyReport(cmd.Context(), id)
			if err != nil {
				return err
			}
			return PrintResult(cmd, reportView{rep})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "report every family in the catalog")
	return cmd
}
