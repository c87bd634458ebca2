package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/metaphox/moon-lang/printer"
)

// errNotFormatted is returned by fmt --check when a file would change.
var errNotFormatted = errors.New("not formatted")

func (a *app) fmtCommand() *cobra.Command {
	var check, write bool

	cmd := &cobra.Command{
		Use:   "fmt [file...]",
		Short: "Reformat source canonically",
		Long: `Prints the source in canonical layout: one statement per line,
blocks indented by the configured unit, single spaces around binary
operators. Comments are not preserved.

Examples:
  moon fmt script.moon
  moon fmt --check src/*.moon
  moon fmt --write script.moon`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check && write {
				return errors.New("--check and --write are mutually exclusive")
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			if write {
				for _, arg := range args {
					if arg == "-" {
						return errors.New("--write needs a file argument")
					}
				}
			}

			var unformatted int
			for _, arg := range args {
				changed, err := a.formatOne(cmd, arg, check, write)
				if err != nil {
					return err
				}
				if changed && check {
					unformatted++
				}
			}
			if unformatted > 0 {
				return fmt.Errorf("%d file(s) %w", unformatted, errNotFormatted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "report files whose formatting would change and exit non-zero")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}

// formatOne formats one input and reports whether the output differs from
// it.
func (a *app) formatOne(cmd *cobra.Command, arg string, check, write bool) (bool, error) {
	name, src, err := readInput(cmd, []string{arg})
	if err != nil {
		return false, err
	}
	prog, err := a.parse(name, src)
	if err != nil {
		return false, err
	}
	out := printer.Format(prog, a.printerOptions())
	changed := out != src

	switch {
	case check:
		if changed {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	case write:
		if changed {
			if err := os.WriteFile(name, []byte(out), 0o644); err != nil {
				return false, fmt.Errorf("failed to write %s: %w", name, err)
			}
			a.log.Info("formatted", "file", name)
		}
	default:
		if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
			return false, err
		}
	}
	return changed, nil
}
