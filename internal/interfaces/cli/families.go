package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seistrack/famview/internal/domain/catalog"
)

// familyList is the printable form of the family table.
type familyList struct {
	Families []*catalog.Family `json:"families"`
	Total    int               `json:"total"`
}

func (l familyList) TableHeaders() []string {
	return []string{"ID", "MEMBERS", "CORE", "START", "LONGEVITY"}
}

func (l familyList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Families))
	for _, fam := range l.Families {
		rows = append(rows, []string{
			strconv.FormatInt(fam.ID, 10),
			strconv.Itoa(fam.Size()),
			strconv.FormatInt(fam.Core, 10),
			strconv.FormatFloat(fam.Start, 'f', 2, 64),
			strconv.FormatFloat(fam.Longevity, 'f', 2, 64),
		})
	}
	return rows
}

func (l familyList) String() string {
	out := ""
	for _, fam := range l.Families {
		out += fmt.Sprintf("family %d: %d members, core %d, start %.2f, longevity %.2f days\n",
			fam.ID, fam.Size(), fam.Core, fam.Start, fam.Longevity)
	}
	return out + fmt.Sprintf("%d families", l.Total)
}

// NewFamiliesCmd lists the catalog's families.
func NewFamiliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the families in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			fams, err := cliCtx.Families.ListFamilies(cmd.Context())
			if err != nil {
				return err
			}
			return PrintResult(cmd, familyList{Families: fams, Total: len(fams)})
		},
	}
}
