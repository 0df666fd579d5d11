package cli

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/voxhive/callflow/pkg/editor"
	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/graphio"
	"github.com/voxhive/callflow/pkg/session"
)

// editCommand creates the edit command, the interactive workflow editor.
func (c *CLI) editCommand() *cobra.Command {
	var (
		refresh bool
		noDraft bool
	)

	cmd := &cobra.Command{
		Use:   "edit [workflow-id]",
		Short: "Edit a workflow in the interactive terminal editor",
		Long: `Edit a workflow in the interactive terminal editor.

The editor keeps full undo/redo history, re-validates the workflow as you
change it, and autosaves a recovery draft after every structural edit. A
draft left behind by a crashed session is restored on start.

Keys:
  up/down, k/j    select node
  a, E, g, t, w   add agent, end, global, trigger, webhook node
  c               connect: mark the source, press c again on the target
  x               delete the selected node and its edges
  u, U            undo, redo (also ctrl+z, ctrl+y)
  r               rename the workflow
  l               recompute the canvas layout
  v               validate now
  ctrl+s          save to the server
  q               quit; unsaved changes stay recoverable as a draft`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], refresh, noDraft)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache when fetching")
	cmd.Flags().BoolVar(&noDraft, "no-draft", false, "do not restore or write recovery drafts")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, id string, refresh, noDraft bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	client, err := c.apiClient(cfg, false)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Fetching workflow...")
	spinner.Start()
	wf, err := client.GetWorkflow(ctx, id, refresh)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		if apperrors.Is(err, apperrors.ErrCodeWorkflowNotFound) {
			printNextStep("Create it first", "callflow create -n \"My workflow\"")
		}
		return fmt.Errorf("get workflow %s: %w", id, friendlyError(err))
	}
	spinner.Stop()

	g := flow.New()
	if wf.Definition != nil {
		g, err = graphio.ToGraph(*wf.Definition)
		if err != nil {
			return fmt.Errorf("decode definition: %w", err)
		}
	}

	var drafts session.Store
	if !noDraft {
		drafts, err = newDraftStore(cfg)
		if err != nil {
			return err
		}
		defer drafts.Close()
	}

	var focused atomic.Bool
	sess, err := editor.NewSession(editor.Options{
		WorkflowID:       id,
		Name:             wf.Name,
		Graph:            g,
		API:              client,
		Drafts:           drafts,
		TextInputFocused: func() bool { return focused.Load() },
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	if !noDraft {
		recovered, err := sess.Recover(ctx)
		if err != nil {
			printWarning("Draft recovery failed: %v", err)
		} else if recovered {
			printInfo("Restored unsaved changes from a previous session")
		}
	}

	m := newEditModel(sess, &focused)
	m.layoutOpts = cfg.LayoutOptions()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := sess.Subscribe(func() { p.Send(sessionChangedMsg{}) })
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}

	if sess.Dirty() {
		printWarning("Unsaved changes kept as a recovery draft")
		printNextStep("Resume", "callflow edit "+id)
	} else {
		printSuccess("No unsaved changes")
	}

	return nil
}
