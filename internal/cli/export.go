package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/graphio"
)

// Supported export formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// exportCommand creates the export command for writing interchange files.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formats   string
		output    string
		direction string
		detailed  bool
	)

	cmd := &cobra.Command{
		Use:   "export [definition.json]",
		Short: "Export a workflow definition to other formats",
		Long: `Export a workflow definition to other formats.

Reads a definition file (JSON or YAML) and writes one file per requested
format next to the input. Supported formats: json, yaml, dot, svg.

Examples:
  callflow export flow.json                  # SVG render
  callflow export flow.json -f dot,svg       # Graphviz source plus render
  callflow export flow.yaml -f json -o out   # out.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], parseFormats(formats), output, direction, detailed)
		},
	}

	cmd.Flags().StringVarP(&formats, "formats", "f", "", "comma-separated formats: json, yaml, dot, svg (default: svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "TB", "graph direction for dot and svg: TB, LR")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include node payloads in dot and svg output")

	return cmd
}

// runExport loads the definition and writes each requested format.
func (c *CLI) runExport(ctx context.Context, input string, formats []string, output, direction string, detailed bool) error {
	g, err := readDefinition(input)
	if err != nil {
		return fmt.Errorf("load definition %s: %w", input, err)
	}

	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	var written []string
	for _, format := range formats {
		format = strings.TrimSpace(strings.ToLower(format))
		outPath := base + "." + format
		if outPath == input {
			return fmt.Errorf("%s would overwrite the input, pass --output", outPath)
		}

		switch format {
		case formatJSON:
			err = graphio.ExportJSON(g, outPath)
		case formatYAML:
			err = graphio.ExportYAML(g, outPath)
		case formatDOT:
			dot := graphio.ToDOT(g, graphio.DOTOptions{Direction: direction, Detailed: detailed})
			err = os.WriteFile(outPath, []byte(dot), 0644)
		case formatSVG:
			err = c.renderSVG(ctx, g, direction, detailed, outPath)
		default:
			return fmt.Errorf("unknown format %q (want json, yaml, dot or svg)", format)
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
		written = append(written, outPath)
	}

	printSuccess("Export complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(g.NodeCount(), g.EdgeCount(), "", true)

	return nil
}

// renderSVG renders the definition through graphviz. The wasm runtime
// makes this the slow path, so it gets a spinner and a timing log.
func (c *CLI) renderSVG(ctx context.Context, g *flow.Graph, direction string, detailed bool, outPath string) error {
	dot := graphio.ToDOT(g, graphio.DOTOptions{Direction: direction, Detailed: detailed})

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Rendering SVG...")
	spinner.Start()
	svg, err := graphio.RenderSVG(ctx, dot)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Rendered SVG")

	return os.WriteFile(outPath, svg, 0644)
}
