package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"trisetra/internal/dispatch"
)

type dispatchFunc func(ctx context.Context, d *dispatch.Dispatcher) (dispatch.Result, error)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Request generated artifacts for a task",
	}
	cmd.AddCommand(newTaskDispatchCommand(ctx, "blend", "Generate preview images and the blend file",
		func(c context.Context, d *dispatch.Dispatcher, taskID int64) (dispatch.Result, error) {
			return d.GenerateBlend(c, taskID)
		}))
	cmd.AddCommand(newTaskDispatchCommand(ctx, "glb", "Generate and upload the GLB mesh and HDRs",
		func(c context.Context, d *dispatch.Dispatcher, taskID int64) (dispatch.Result, error) {
			return d.GenerateGLB(c, taskID)
		}))
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh shared asset libraries",
	}
	cmd.AddCommand(newDispatchCommand(ctx, "prebuilts", "Update the prebuilt asset library",
		func(c context.Context, d *dispatch.Dispatcher) (dispatch.Result, error) {
			return d.UpdatePrebuilts(c)
		}))
	cmd.AddCommand(newDispatchCommand(ctx, "floor-materials", "Update the floor material library",
		func(c context.Context, d *dispatch.Dispatcher) (dispatch.Result, error) {
			return d.UpdateFloorMaterials(c)
		}))
	return cmd
}

func newTaskDispatchCommand(ctx *commandContext, use, short string, fn func(context.Context, *dispatch.Dispatcher, int64) (dispatch.Result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return runDispatch(cmd, ctx, func(c context.Context, d *dispatch.Dispatcher) (dispatch.Result, error) {
				return fn(c, d, taskID)
			})
		},
	}
}

func newDispatchCommand(ctx *commandContext, use, short string, fn dispatchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd, ctx, fn)
		},
	}
}

// runDispatch sends the job. The notifier already reports the outcome, so
// text mode only adds the redirect.
func runDispatch(cmd *cobra.Command, ctx *commandContext, fn dispatchFunc) error {
	result, err := fn(cmd.Context(), ctx.dispatcher(cmd))
	if err != nil {
		return err
	}
	if ctx.jsonMode() {
		return writeJSON(cmd, result)
	}
	if result.RedirectURL != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Open %s\n", result.RedirectURL)
	}
	return nil
}
