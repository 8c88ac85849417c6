package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trisetra/internal/export"
	"trisetra/internal/rotation"
)

func newRotationCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotation",
		Short: "Manage per-job rotation overrides in local storage",
	}
	cmd.AddCommand(newRotationSetCommand(ctx))
	cmd.AddCommand(newRotationGetCommand(ctx))
	cmd.AddCommand(newRotationListCommand(ctx))
	cmd.AddCommand(newRotationClearCommand(ctx))
	return cmd
}

func newRotationSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <task-id> <job-id> <steps>",
		Short: "Store a job's rotation in quarter turns",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			steps, err := strconv.Atoi(strings.TrimSpace(args[2]))
			if err != nil {
				return fmt.Errorf("invalid rotation steps %q", args[2])
			}
			return ctx.withStore(func(store *rotation.Store) error {
				if err := store.SetRotation(cmd.Context(), taskID, args[1], steps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s of task %d rotated %d degrees\n", strings.TrimSpace(args[1]), taskID, export.Degrees(steps))
				return nil
			})
		},
	}
}

func newRotationGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <task-id> <job-id>",
		Short: "Show a job's stored rotation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *rotation.Store) error {
				steps, ok, err := store.Rotation(cmd.Context(), taskID, args[1])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !ok {
					fmt.Fprintf(out, "No rotation stored for job %s\n", args[1])
					return nil
				}
				fmt.Fprintf(out, "%d steps (%d degrees)\n", steps, export.Degrees(steps))
				return nil
			})
		},
	}
}

func newRotationListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's stored rotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *rotation.Store) error {
				overrides, err := store.Overrides(cmd.Context(), taskID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(overrides) == 0 {
					fmt.Fprintln(out, "No rotations stored")
					return nil
				}
				rows := make([][]string, len(overrides))
				for i, o := range overrides {
					degrees := "invalid"
					if o.Err == nil {
						degrees = strconv.Itoa(export.Degrees(o.Steps))
					}
					rows[i] = []string{o.JobID, o.Raw, degrees}
				}
				fmt.Fprintln(out, renderTable([]column{
					{Header: "Job"},
					{Header: "Stored", Align: alignRight},
					{Header: "Degrees", Align: alignRight},
				}, rows))
				return nil
			})
		},
	}
}

func newRotationClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <task-id> <job-id>",
		Short: "Remove a job's stored rotation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *rotation.Store) error {
				if err := store.RemoveItem(cmd.Context(), rotation.Key(taskID, strings.TrimSpace(args[1]))); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared rotation for job %s\n", strings.TrimSpace(args[1]))
				return nil
			})
		},
	}
}
