package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trisetra/internal/workorder"
)

func newWorkOrderCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newStatusCommand(ctx),
		newFinalizeCommand(ctx),
		newRequireInputCommand(ctx),
		newFailCommand(ctx),
		newTransitionCommand(ctx),
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show a task's work order status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			view := ctx.controller(cmd).FetchStatus(cmd.Context(), taskID)
			if err := printWorkOrder(cmd, ctx, view); err != nil {
				return err
			}
			return view.Err
		},
	}
}

func newFinalizeCommand(ctx *commandContext) *cobra.Command {
	var notify bool
	cmd := &cobra.Command{
		Use:   "finalize <task-id>",
		Short: "Mark a work order completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, ctx, args[0], func(ctl *workorder.Controller, taskID int64) (workorder.View, error) {
				return ctl.Finalize(cmd.Context(), taskID, notify)
			})
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "Notify the requester by email")
	return cmd
}

func newFailCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fail <task-id>",
		Short: "Mark a work order failed and notify the requester",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, ctx, args[0], func(ctl *workorder.Controller, taskID int64) (workorder.View, error) {
				return ctl.MarkFailed(cmd.Context(), taskID)
			})
		},
	}
}

func newRequireInputCommand(ctx *commandContext) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "require-input <task-id>",
		Short: "Ask the requester for more input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runMutation(cmd, ctx, args[0], func(ctl *workorder.Controller, taskID int64) (workorder.View, error) {
				return ctl.RequireInput(cmd.Context(), taskID, message)
			})
			if errors.Is(err, workorder.ErrJustificationRequired) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Require input cancelled: a justification message is required")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Justification shown to the requester")
	return cmd
}

func newTransitionCommand(ctx *commandContext) *cobra.Command {
	var notify bool
	var helpText string
	cmd := &cobra.Command{
		Use:   "transition <task-id> <status>",
		Short: "Request an arbitrary work order status",
		Long: "Request an arbitrary work order status.\n\nStatuses: " +
			strings.Join(statusNames(), ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := workorder.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return runMutation(cmd, ctx, args[0], func(ctl *workorder.Controller, taskID int64) (workorder.View, error) {
				return ctl.Transition(cmd.Context(), taskID, target, workorder.TransitionOptions{
					Notify:   notify,
					HelpText: helpText,
				})
			})
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "Notify the requester by email")
	cmd.Flags().StringVar(&helpText, "help-text", "", "Help text sent with the change")
	return cmd
}

// runMutation loads the current status so the transition can be checked,
// runs fn and prints the reconciled view.
func runMutation(cmd *cobra.Command, ctx *commandContext, rawID string, fn func(*workorder.Controller, int64) (workorder.View, error)) error {
	taskID, err := parseTaskID(rawID)
	if err != nil {
		return err
	}
	view, opErr := fn(ctx.controller(cmd), taskID)
	if errors.Is(opErr, workorder.ErrJustificationRequired) {
		return opErr
	}
	if err := printWorkOrder(cmd, ctx, view); err != nil {
		return err
	}
	return opErr
}

func printWorkOrder(cmd *cobra.Command, ctx *commandContext, view workorder.View) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, toWorkOrderJSON(view))
	}
	out := cmd.OutOrStdout()
	for _, line := range renderWorkOrder(view, shouldColorize(out)) {
		fmt.Fprintln(out, line)
	}
	return nil
}

func statusNames() []string {
	statuses := workorder.AllStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}
