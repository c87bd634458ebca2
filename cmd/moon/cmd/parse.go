package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metaphox/moon-lang/ast"
	"github.com/metaphox/moon-lang/config"
	"github.com/metaphox/moon-lang/internal/treeview"
)

func (a *app) parseCommand() *cobra.Command {
	var format string
	var spans bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the syntax tree of a source file",
		Long: `Parses a source file and prints its syntax tree.

Formats:
  sexpr    (kind field: value ...) without spans
  json     nested objects with kind, span and fields
  yaml     same structure as json
  outline  one node per line, indented by depth

Examples:
  moon parse script.moon
  moon parse --format json script.moon
  echo 'f = -> x' | moon parse`,
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
			if format == "" {
				format = a.cfg.Output.Format
			}
			return writeTree(cmd.OutOrStdout(), prog, format, spans)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: sexpr, json, yaml or outline (default from config)")
	cmd.Flags().BoolVar(&spans, "spans", false, "include spans in outline output")
	return cmd
}

// writeTree renders node to w in the named format.
func writeTree(w io.Writer, node ast.Node, format string, spans bool) error {
	switch format {
	case config.OutputSExpr:
		_, err := fmt.Fprintln(w, ast.SExpr(node))
		return err

	case config.OutputJSON:
		data, err := json.MarshalIndent(ast.ToMap(node), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode tree: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ast.ToMap(node)); err != nil {
			return fmt.Errorf("failed to encode tree: %w", err)
		}
		return enc.Close()

	case config.OutputOutline:
		_, err := io.WriteString(w, treeview.Outline(node, spans))
		return err

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
