package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// listCommand creates the list command for showing server workflows.
func (c *CLI) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.Context())
		},
	}

	return cmd
}

func (c *CLI) runList(ctx context.Context) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	client, err := c.apiClient(cfg, false)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Fetching workflows...")
	spinner.Start()
	summaries, err := client.ListWorkflows(ctx)
	if err != nil {
		spinner.StopWithError("List failed")
		return fmt.Errorf("list workflows: %w", friendlyError(err))
	}
	spinner.Stop()

	if len(summaries) == 0 {
		printDetail("No workflows yet")
		printNextStep("Create one", `callflow create -n "My workflow"`)
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		name := s.Name
		if name == "" {
			name = "—"
		}
		rows = append(rows, []string{s.ID, name})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleDim
			}
			return StyleValue
		})

	fmt.Println(t.Render())
	printDetail("%d workflows", len(summaries))

	return nil
}
