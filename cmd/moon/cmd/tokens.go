package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/metaphox/moon-lang/ast"
	"github.com/metaphox/moon-lang/lexer"
	"github.com/metaphox/moon-lang/parser"
)

func (a *app) tokensCommand() *cobra.Command {
	var comments bool

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the classified token stream",
		Long: `Prints one token per line: span, type and literal. Layout tokens
(block-enter, block-exit, soft-block-exit, newline) appear where the
parser sees them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			toks := lexer.TokenizeWithOptions(src, a.lexerOptions())
			a.log.Debug("tokenized", "file", name, "tokens", len(toks))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, tok := range toks {
				if tok.Type == ast.COMMENT && !comments {
					continue
				}
				lit := ""
				if tok.Literal != "" {
					lit = strconv.Quote(tok.Literal)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", tok.Span, tok.Type, lit)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			for _, tok := range toks {
				if tok.Type == ast.ILLEGAL {
					return &sourceError{name: name, src: src, err: &parser.LexError{Span: tok.Span, Text: tok.Literal}}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&comments, "comments", false, "include comment tokens")
	return cmd
}
