package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxhive/callflow/pkg/flow/validate"
	"github.com/voxhive/callflow/pkg/graphio"
)

// getCommand creates the get command for inspecting a single workflow.
func (c *CLI) getCommand() *cobra.Command {
	var (
		refresh bool
		noCache bool
		asJSON  bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "get [workflow-id]",
		Short: "Show a workflow from the server",
		Long: `Show a workflow from the server.

Responses are cached locally; pass --refresh to bypass the cache for this
request or --no-cache to skip caching entirely.

Pass --output to download the workflow as a {name, definition} file
(JSON, or YAML for .yaml/.yml paths) that export, layout and validate
accept as input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGet(cmd.Context(), args[0], refresh, noCache, asJSON, output)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw workflow JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the workflow to a file instead of only printing it")

	return cmd
}

func (c *CLI) runGet(ctx context.Context, id string, refresh, noCache, asJSON bool, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	client, err := c.apiClient(cfg, noCache)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Fetching workflow...")
	spinner.Start()
	wf, err := client.GetWorkflow(ctx, id, refresh)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("get workflow %s: %w", id, friendlyError(err))
	}
	spinner.Stop()

	if output != "" {
		doc := graphio.Document{Name: wf.Name}
		if wf.Definition != nil {
			doc.Definition = *wf.Definition
		}
		if err := writeDocument(doc, output); err != nil {
			return fmt.Errorf("write workflow %s: %w", id, err)
		}
		printFile(output)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(wf)
	}

	name := wf.Name
	if name == "" {
		name = "(unnamed)"
	}
	printSuccess("Fetched %s", StyleHighlight.Render(name))
	printKeyValue("ID", wf.ID)

	if wf.Definition == nil {
		printDetail("No definition saved yet")
	} else {
		g, err := graphio.ToGraph(*wf.Definition)
		if err != nil {
			return fmt.Errorf("decode definition: %w", err)
		}
		findings := validate.Check(g)
		status, ok := "valid", true
		if len(findings) > 0 {
			status, ok = fmt.Sprintf("%d findings", len(findings)), false
		}
		printStats(g.NodeCount(), g.EdgeCount(), status, ok)
	}

	printNewline()
	printNextStep("Edit", "callflow edit "+wf.ID)

	return nil
}
