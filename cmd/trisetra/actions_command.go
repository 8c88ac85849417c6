package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trisetra/internal/actions"
	"trisetra/internal/task"
)

type actionJSON struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Weight      int    `json:"weight"`
	Disabled    bool   `json:"disabled,omitempty"`
	Contributed bool   `json:"contributed,omitempty"`
}

func newActionsCommand(ctx *commandContext) *cobra.Command {
	var (
		name            string
		projectID       int64
		subset          string
		projectSubsets  []string
		bugTracker      string
		inferenceActive bool
		backupActive    bool
	)

	cmd := &cobra.Command{
		Use:   "actions <task-id>",
		Short: "Print the task action menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			t := task.Task{
				ID:         taskID,
				Name:       strings.TrimSpace(name),
				Subset:     strings.TrimSpace(subset),
				BugTracker: strings.TrimSpace(bugTracker),
			}
			if cmd.Flags().Changed("project-id") {
				t.ProjectID = &projectID
			}
			if err := t.Validate(); err != nil {
				return err
			}

			menu := actions.TaskMenu(actions.MenuState{
				Task:            t,
				InferenceActive: inferenceActive,
				BackupActive:    backupActive,
			}, ctx.configValue().Actions.Contributions)

			if ctx.jsonMode() {
				out := make([]actionJSON, len(menu))
				for i, a := range menu {
					out[i] = actionJSON(a)
				}
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			colorize := shouldColorize(w)
			title := fmt.Sprintf("Task %d", t.ID)
			if t.Name != "" {
				title += " " + t.Name
			}
			for _, line := range renderSectionHeader(title, colorize) {
				fmt.Fprintln(w, line)
			}
			if t.Subset != "" {
				fmt.Fprintln(w, renderStatusLine("Subset", statusInfo, t.Subset, colorize))
			}
			if subsets := task.ProjectSubsets(projectSubsets); len(subsets) > 0 {
				fmt.Fprintln(w, renderStatusLine("Subsets", statusInfo, strings.Join(subsets, ", "), colorize))
			}

			rows := make([][]string, len(menu))
			for i, a := range menu {
				state := ""
				switch {
				case a.Disabled:
					state = "disabled"
				case a.Contributed:
					state = "contributed"
				}
				rows[i] = []string{strconv.Itoa(a.Weight), a.Label, a.Key, state}
			}
			fmt.Fprintln(w, renderTable([]column{
				{Header: "Weight", Align: alignRight},
				{Header: "Action", MaxWidth: 36},
				{Header: "Key"},
				{Header: "State"},
			}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().Int64Var(&projectID, "project-id", 0, "Project the task belongs to")
	cmd.Flags().StringVar(&subset, "subset", "", "Task subset")
	cmd.Flags().StringSliceVar(&projectSubsets, "project-subsets", nil, "Subsets used across the task's project")
	cmd.Flags().StringVar(&bugTracker, "bug-tracker", "", "Bug tracker URL")
	cmd.Flags().BoolVar(&inferenceActive, "inference-active", false, "Automatic annotation is running")
	cmd.Flags().BoolVar(&backupActive, "backup-active", false, "A backup is running")
	return cmd
}
