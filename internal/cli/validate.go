package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxhive/callflow/pkg/flow/validate"
)

// validateCommand creates the validate command for running the rule checker.
func (c *CLI) validateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate [workflow-id]",
		Short: "Validate a workflow against the call-flow rules",
		Long: `Validate a workflow against the call-flow rules.

With a workflow id the server validates its stored definition. With --file
the rule checker runs locally on a definition file (JSON or YAML) and no
server is needed.

The command exits non-zero when the workflow has findings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (file == "") {
				return fmt.Errorf("pass a workflow id or --file, not both")
			}
			if file != "" {
				return c.runValidateFile(file)
			}
			return c.runValidate(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "validate a local definition file instead of a server workflow")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, id string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	client, err := c.apiClient(cfg, false)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Validating workflow...")
	spinner.Start()
	res, err := client.ValidateWorkflow(ctx, id)
	if err != nil {
		spinner.StopWithError("Validation failed")
		return fmt.Errorf("validate workflow %s: %w", id, friendlyError(err))
	}
	spinner.Stop()

	return reportFindings(res.Errors)
}

func (c *CLI) runValidateFile(path string) error {
	g, err := readDefinition(path)
	if err != nil {
		return fmt.Errorf("load definition %s: %w", path, err)
	}
	return reportFindings(validate.Check(g))
}

// reportFindings prints validator findings and returns an error when the
// workflow is invalid, so the command exits non-zero.
func reportFindings(findings []validate.Error) error {
	if len(findings) == 0 {
		printSuccess("Workflow is valid")
		return nil
	}

	printWarning("%d findings", len(findings))
	for _, f := range findings {
		printFinding(f)
	}

	return fmt.Errorf("workflow has %d validation findings", len(findings))
}
