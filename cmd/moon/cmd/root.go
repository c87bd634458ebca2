package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/metaphox/moon-lang/ast"
	"github.com/metaphox/moon-lang/config"
	"github.com/metaphox/moon-lang/lexer"
	"github.com/metaphox/moon-lang/parser"
	"github.com/metaphox/moon-lang/printer"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	verbose bool

	cfg *config.Config
	log *slog.Logger
}

// NewRootCommand builds the moon command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "moon",
		Short: "moon - parser and formatter for an indentation-sensitive Lua dialect",
		Long: `moon reads moon source, reports lexical and syntax errors and renders
the syntax tree.

Commands:
  parse    print the syntax tree (sexpr, json, yaml or outline)
  tokens   print the classified token stream
  fmt      reformat source canonically
  repl     parse input interactively
  view     browse the syntax tree in the terminal`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $MOON_CONFIG, ./moon.toml or ./moon.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		a.parseCommand(),
		a.tokensCommand(),
		a.fmtCommand(),
		a.replCommand(),
		a.viewCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs the command tree on os.Args and reports any error on stderr.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, path, err := config.Discover(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if path != "" {
		a.log.Debug("config loaded", "path", path)
	}
	setColor(cfg.Output.Color, cmd.ErrOrStderr())
	return nil
}

func (a *app) lexerOptions() lexer.Options {
	return lexer.Options{TabWidth: a.cfg.Lexer.TabWidth}
}

func (a *app) printerOptions() printer.Options {
	return printer.Options{Indent: a.cfg.Format.IndentString()}
}

// parse parses src with the configured lexer. Errors carry the input name
// and source so the diagnostic can show the offending line.
func (a *app) parse(name, src string) (*ast.Program, error) {
	start := time.Now()
	p := parser.New(lexer.NewWithOptions(src, a.lexerOptions()))
	prog, err := p.ParseProgram()
	if err != nil {
		a.log.Debug("parse failed", "file", name, "error", err)
		return nil, &sourceError{name: name, src: src, err: err}
	}
	a.log.Debug("parsed",
		"file", name,
		"tokens", len(p.Tokens()),
		"statements", len(prog.Statements),
		"duration", time.Since(start),
	)
	return prog, nil
}

// readInput returns the name and content of the input named by args. No
// argument or "-" reads stdin.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read input: %w", err)
	}
	return args[0], string(data), nil
}
