package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// createCommand creates the create command for registering new workflows.
func (c *CLI) createCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new workflow on the server",
		Long: `Create a new workflow on the server.

The server assigns the workflow id. The workflow starts out empty; open it
with 'callflow edit' to build the call flow.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCreate(cmd.Context(), name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "Untitled workflow", "workflow display name")

	return cmd
}

func (c *CLI) runCreate(ctx context.Context, name string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	client, err := c.apiClient(cfg, false)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Creating workflow...")
	spinner.Start()
	wf, err := client.CreateWorkflow(ctx, name)
	if err != nil {
		spinner.StopWithError("Create failed")
		return fmt.Errorf("create workflow: %w", friendlyError(err))
	}
	spinner.Stop()

	printSuccess("Created %s", StyleHighlight.Render(wf.Name))
	printKeyValue("ID", wf.ID)
	printNewline()
	printNextStep("Edit", "callflow edit "+wf.ID)

	return nil
}
