package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trisetra/internal/export"
	"trisetra/internal/rotation"
)

type exportJSON struct {
	TaskID int64           `json:"task_id"`
	URL    string          `json:"url"`
	Jobs   []exportJobJSON `json:"jobs"`
}

type exportJobJSON struct {
	JobID   string `json:"job_id"`
	Degrees int    `json:"degrees"`
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <task-id>",
		Short: "Build the annotation export URL with rotation overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *rotation.Store) error {
				builder := export.NewBuilder(ctx.remoteClient(), store, ctx.loggerValue())
				built, err := builder.Build(cmd.Context(), taskID)
				if err != nil {
					return err
				}
				link, pairs := built.URL, built.Pairs

				if ctx.jsonMode() {
					out := exportJSON{TaskID: taskID, URL: link, Jobs: []exportJobJSON{}}
					for _, p := range pairs {
						out.Jobs = append(out.Jobs, exportJobJSON{JobID: p.JobID, Degrees: p.Degrees})
					}
					return writeJSON(cmd, out)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintln(w, link)
				if len(pairs) > 0 {
					rows := make([][]string, len(pairs))
					for i, p := range pairs {
						rows[i] = []string{p.JobID, strconv.Itoa(p.Degrees)}
					}
					fmt.Fprintln(w, renderTable([]column{
						{Header: "Job"},
						{Header: "Degrees", Align: alignRight},
					}, rows))
				}
				return nil
			})
		},
	}
}
