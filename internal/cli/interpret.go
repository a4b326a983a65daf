package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/pipeline"
	"github.com/sensala/viewer/pkg/session"
)

// interpretOpts holds the flags of the interpret command.
type interpretOpts struct {
	output   string   // output directory
	formats  []string // svg, png, pdf, json
	export   string   // path of the graphs JSON export
	detailed bool     // label nodes with id and class
	quiet    bool     // print only the result text
}

// interpretCommand creates the interpret command: one discourse in, two
// rendered trees and the result text out.
func (c *CLI) interpretCommand() *cobra.Command {
	var formatsStr string
	var opts interpretOpts

	cmd := &cobra.Command{
		Use:   "interpret [discourse...]",
		Short: "Interpret a discourse and render its parse and term trees",
		Long: `Interpret a discourse and render its parse and term trees.

The discourse is taken from the arguments, or from stdin when none are given.
Two files are written per format: stanford.<fmt> (the parse tree) and
sensala.<fmt> (the term tree).`,
		Example: `  sensala interpret "John loves Mary. He is happy."
  echo "Socrates walks." | sensala interpret -f svg,png -o out/
  sensala interpret --json graphs.json "Every farmer owns a donkey."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			discourse, err := readDiscourse(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return c.runInterpret(cmd.Context(), discourse, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&opts.export, "json", "", "also write both graphs and the result to this JSON file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their id and class")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the result")

	return cmd
}

// readDiscourse joins the arguments or, without arguments, reads stdin.
func readDiscourse(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return newlines.Replace(strings.Join(args, " ")), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
	}
	return strings.TrimSpace(newlines.Replace(string(data))), nil
}

// newlines folds Windows and old Mac line endings into \n, the only line
// break a discourse may carry.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func (c *CLI) runInterpret(ctx context.Context, discourse string, opts *interpretOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := c.newApp(ctx, cfg, opts.detailed)
	if err != nil {
		return err
	}
	defer a.Close()

	prog := newProgress(logger)
	var spinner *Spinner
	if !opts.quiet {
		spinner = newSpinner(ctx, "Interpreting...")
		spinner.Start()
	}
	outcome, err := a.session.Interpret(ctx, discourse)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("Interpreted discourse",
		"stanford_nodes", outcome.ParseTree.Stats.NodeCount,
		"sensala_nodes", outcome.Term.Stats.NodeCount)

	if opts.quiet {
		fmt.Fprintln(out, outcome.Response.Result)
		return nil
	}

	paths, err := writeOutcome(ctx, a, outcome, opts)
	if err != nil {
		return err
	}

	printResult(outcome.Response.Result)
	printStats(outcome.ParseTree, outcome.Term)
	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeOutcome renders both surfaces in every requested format and writes
// the optional export. It returns the written paths.
func writeOutcome(ctx context.Context, a *app, outcome *session.Outcome, opts *interpretOpts) ([]string, error) {
	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, res := range []*pipeline.Result{outcome.ParseTree, outcome.Term} {
		sf, err := a.surfaces.Get(res.Surface)
		if err != nil {
			return nil, err
		}
		artifacts, err := pipeline.Render(ctx, res, sf.Size(), opts.formats)
		if err != nil {
			return nil, err
		}
		for _, format := range opts.formats {
			path := filepath.Join(opts.output, res.Surface+"."+format)
			if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}

	if opts.export != "" {
		export := graph.Export{
			Discourse: a.session.State().Discourse,
			Result:    outcome.Response.Result,
			Graphs: map[string]graph.Graph{
				outcome.ParseTree.Surface: outcome.ParseTree.Graph,
				outcome.Term.Surface:      outcome.Term.Graph,
			},
		}
		if err := graph.WriteExportFile(export, opts.export); err != nil {
			return nil, err
		}
		paths = append(paths, opts.export)
	}
	return paths, nil
}
