package previews

import (
	"net/url"
	"strings"
)

// Kind classifies a preview entry.
type Kind string

const (
	KindImage       Kind = "image"
	KindMesh        Kind = "mesh"
	KindPlaceholder Kind = "placeholder"
)

// Fit is the axis an image is scaled to when displayed.
type Fit string

const (
	FitWidth  Fit = "width"
	FitHeight Fit = "height"
)

// Asset is one entry of a preview listing, ready for display.
type Asset struct {
	URL          string
	Name         string
	Kind         Kind
	LastModified string
	OpenURL      string
	Panorama     bool
	Description  string
	Width        int
	Height       int
	Fit          Fit
	Err          error
}

// Listing is the service response for a task's reconstruction previews.
type Listing struct {
	Previews     []string `json:"previews"`
	LastModified string   `json:"last_modified"`
	Message      string   `json:"message"`
}

// Gallery is the display state produced by one listing.
type Gallery struct {
	TaskID       int64
	Images       []Asset
	Mesh         *Asset
	LastModified string
	Placeholder  *Asset
	Warnings     []string
}

// Assets returns everything the gallery displays, mesh first.
func (g Gallery) Assets() []Asset {
	out := make([]Asset, 0, len(g.Images)+2)
	if g.Placeholder != nil {
		out = append(out, *g.Placeholder)
	}
	if g.Mesh != nil {
		out = append(out, *g.Mesh)
	}
	return append(out, g.Images...)
}

// assetName returns the file name portion of an asset url.
func assetName(raw string) string {
	name := raw
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

func fitFor(width, height int) Fit {
	if width > height {
		return FitWidth
	}
	return FitHeight
}

func panoramaOpenURL(viewer, pageURL, assetURL string) string {
	sep := "?"
	if strings.Contains(viewer, "?") {
		sep = "&"
	}
	return viewer + sep + "source=" + url.QueryEscape(pageURL) + "&url=" + url.QueryEscape(assetURL)
}

func placeholder(message string) *Asset {
	return &Asset{Kind: KindPlaceholder, Description: message}
}
