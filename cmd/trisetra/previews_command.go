package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"trisetra/internal/previews"
)

// meshPrinter shows meshes by printing where to open them.
type meshPrinter struct {
	out      io.Writer
	colorize bool
}

func (m meshPrinter) ShowMesh(_ context.Context, mesh previews.Asset) error {
	message := mesh.Name
	if mesh.LastModified != "" {
		message += " (modified " + mesh.LastModified + ")"
	}
	fmt.Fprintln(m.out, renderStatusLine("Mesh", statusInfo, message, m.colorize))
	fmt.Fprintln(m.out, renderStatusLine("Open", statusInfo, mesh.OpenURL, m.colorize))
	return nil
}

type assetJSON struct {
	Name         string `json:"name,omitempty"`
	Kind         string `json:"kind"`
	URL          string `json:"url,omitempty"`
	OpenURL      string `json:"open_url,omitempty"`
	Panorama     bool   `json:"panorama,omitempty"`
	Description  string `json:"description,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Fit          string `json:"fit,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Error        string `json:"error,omitempty"`
}

type galleryJSON struct {
	TaskID       int64       `json:"task_id"`
	LastModified string      `json:"last_modified,omitempty"`
	Assets       []assetJSON `json:"assets"`
	Warnings     []string    `json:"warnings,omitempty"`
}

func toAssetJSON(a previews.Asset) assetJSON {
	return assetJSON{
		Name:         a.Name,
		Kind:         string(a.Kind),
		URL:          a.URL,
		OpenURL:      a.OpenURL,
		Panorama:     a.Panorama,
		Description:  a.Description,
		Width:        a.Width,
		Height:       a.Height,
		Fit:          string(a.Fit),
		LastModified: a.LastModified,
		Error:        errorText(a.Err),
	}
}

func newPreviewsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "previews <task-id>",
		Short: "List a task's reconstruction previews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			gallery := ctx.pipeline().Load(cmd.Context(), taskID)
			if ctx.jsonMode() {
				out := galleryJSON{
					TaskID:       gallery.TaskID,
					LastModified: gallery.LastModified,
					Warnings:     gallery.Warnings,
				}
				for _, a := range gallery.Assets() {
					out.Assets = append(out.Assets, toAssetJSON(a))
				}
				return writeJSON(cmd, out)
			}
			return printGallery(cmd, gallery)
		},
	}
}

func printGallery(cmd *cobra.Command, gallery previews.Gallery) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader(fmt.Sprintf("Previews for task %d", gallery.TaskID), colorize) {
		fmt.Fprintln(out, line)
	}
	if gallery.Placeholder != nil {
		fmt.Fprintln(out, renderStatusLine("Previews", statusWarn, gallery.Placeholder.Description, colorize))
		return nil
	}
	if err := gallery.ShowMesh(cmd.Context(), meshPrinter{out: out, colorize: colorize}); err != nil {
		return err
	}
	for _, warning := range gallery.Warnings {
		fmt.Fprintln(out, renderStatusLine("Warning", statusWarn, warning, colorize))
	}
	if len(gallery.Images) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(gallery.Images))
	for _, img := range gallery.Images {
		size := "-"
		if img.Err == nil {
			size = strconv.Itoa(img.Width) + "x" + strconv.Itoa(img.Height)
		}
		rows = append(rows, []string{img.Description, size, string(img.Fit), img.OpenURL})
	}
	fmt.Fprintln(out, renderTable([]column{
		{Header: "Image", MaxWidth: 40},
		{Header: "Size", Align: alignRight},
		{Header: "Fit"},
		{Header: "Open"},
	}, rows))
	return nil
}
