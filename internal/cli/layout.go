package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voxhive/callflow/pkg/flow/layout"
	"github.com/voxhive/callflow/pkg/graphio"
)

// layoutCommand creates the layout command for computing canvas positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		direction string
	)
	opts := layout.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "layout [definition.json]",
		Short: "Compute canvas positions for a workflow definition",
		Long: `Compute canvas positions for a workflow definition.

The layout command reads a definition file (JSON or YAML), assigns every
node a position with the rank-based layout engine, and writes the
positioned definition. The same input always produces the same layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			// Config supplies the base; explicit flags win over it.
			base := cfg.LayoutOptions()
			flags := cmd.Flags()
			opts.Direction = base.Direction
			if flags.Changed("direction") {
				opts.Direction = layout.Direction(direction)
			}
			if !flags.Changed("node-width") {
				opts.NodeWidth = base.NodeWidth
			}
			if !flags.Changed("node-height") {
				opts.NodeHeight = base.NodeHeight
			}
			if !flags.Changed("rank-gap") {
				opts.RankGap = base.RankGap
			}
			if !flags.Changed("node-gap") {
				opts.NodeGap = base.NodeGap
			}

			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")

	// Layout flags
	cmd.Flags().StringVarP(&direction, "direction", "d", string(opts.Direction), "layout direction: TB (default), LR")
	cmd.Flags().Float64Var(&opts.NodeWidth, "node-width", opts.NodeWidth, "node footprint width")
	cmd.Flags().Float64Var(&opts.NodeHeight, "node-height", opts.NodeHeight, "node footprint height")
	cmd.Flags().Float64Var(&opts.RankGap, "rank-gap", opts.RankGap, "spacing between ranks")
	cmd.Flags().Float64Var(&opts.NodeGap, "node-gap", opts.NodeGap, "spacing between nodes within a rank")
	cmd.Flags().Float64Var(&opts.Zigzag, "zigzag", opts.Zigzag, "cross-axis offset for single-node ranks")
	cmd.Flags().IntVar(&opts.Sweeps, "sweeps", opts.Sweeps, "crossing-reduction sweeps")

	return cmd
}

// runLayout loads the definition, computes positions, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts layout.Options, output string) error {
	g, err := readDefinition(input)
	if err != nil {
		return fmt.Errorf("load definition %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()
	positions, err := layout.Compute(g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	layout.Apply(g, positions)
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graphio.ExportJSON(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), "positioned", true)
	printNewline()
	printNextStep("Render", "callflow export -f svg "+outputPath)

	return nil
}
