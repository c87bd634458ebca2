package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/metaphox/moon-lang/config"
	"github.com/metaphox/moon-lang/lexer"
	"github.com/metaphox/moon-lang/parser"
	"github.com/metaphox/moon-lang/printer"
)

const (
	historyFile = ".moon_history"
	promptMain  = "moon> "
	promptCont  = "  ... "
	replName    = "<repl>"
)

const replHelp = `Enter moon source. Input that ends inside a construct continues on
the next line; a multi-line entry ends with an empty line.

  :format NAME   switch output (sexpr, json, yaml, outline, fmt)
  :help          show this help
  :quit          leave`

// lineReader is the part of liner.State the REPL needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func (a *app) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse input interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := os.UserHomeDir()
			histPath := filepath.Join(home, historyFile)

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if f, err := os.Open(histPath); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}
			defer func() {
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "moon v%s  (:help for help)\n", Version)
			return a.repl(ln, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// repl reads entries from ln until end of input and prints the tree of each.
func (a *app) repl(ln lineReader, out, errOut io.Writer) error {
	format := a.cfg.Output.Format

	for {
		src, err := a.readEntry(ln)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		entry := strings.TrimSpace(src)
		if entry == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(entry, ":") {
			fields := strings.Fields(entry)
			switch fields[0] {
			case ":quit", ":q":
				return nil
			case ":help":
				fmt.Fprintln(out, replHelp)
			case ":format":
				if len(fields) != 2 || !replFormat(fields[1]) {
					fmt.Fprintln(errOut, "usage: :format sexpr|json|yaml|outline|fmt")
					continue
				}
				format = fields[1]
			default:
				fmt.Fprintln(errOut, "unknown command, type :help")
			}
			continue
		}

		prog, err := a.parse(replName, src)
		if err != nil {
			printError(errOut, err)
			continue
		}
		if format == "fmt" {
			fmt.Fprint(out, printer.Format(prog, a.printerOptions()))
			continue
		}
		if err := writeTree(out, prog, format, false); err != nil {
			return err
		}
	}
}

// readEntry reads one entry. A line that leaves the source incomplete asks
// for more; once an entry spans several lines it ends at an empty line, since
// a complete parse does not mean the block is finished.
func (a *app) readEntry(ln lineReader) (string, error) {
	var b strings.Builder
	lines := 0
	for {
		prompt := promptMain
		if lines > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			if lines > 0 && errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return "", err
		}
		if lines > 0 && strings.TrimSpace(line) == "" {
			return b.String(), nil
		}
		if lines > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		lines++

		src := b.String()
		if lines == 1 && strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, nil
		}
		_, perr := parser.New(lexer.NewWithOptions(src, a.lexerOptions())).ParseProgram()
		switch {
		case perr != nil && parser.IsIncomplete(perr):
			continue
		case perr != nil, lines == 1:
			return src, nil
		}
	}
}

func replFormat(name string) bool {
	switch name {
	case config.OutputSExpr, config.OutputJSON, config.OutputYAML, config.OutputOutline, "fmt":
		return true
	}
	return false
}
