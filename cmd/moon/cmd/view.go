package cmd

import (
	"github.com/spf13/cobra"

	"github.com/metaphox/moon-lang/internal/treeview"
)

func (a *app) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "view [file]",
		Aliases: []string{"tree"},
		Short:   "Browse the syntax tree interactively",
		Long: `Opens the syntax tree of a source file in a terminal browser.

Keys:
  j / k, arrows   move
  enter / space   fold or unfold the selected node
  e / c           expand all / collapse to top level
  s               toggle spans
  g / G           top / bottom
  q, Ctrl+C       quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			prog, err := a.parse(name, src)
			if err != nil {
				return err
			}
			return treeview.Run(name, prog)
		},
	}
}
