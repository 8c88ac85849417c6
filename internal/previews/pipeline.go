package previews

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"trisetra/internal/config"
	"trisetra/internal/logging"
	"trisetra/internal/remote"
	"trisetra/internal/services"
)

const defaultMaxLoads = 4

// Remote is the subset of the remote client the pipeline needs.
type Remote interface {
	Get(ctx context.Context, path string, query map[string]string) (remote.Envelope, error)
}

// MeshViewer renders the mesh asset of a gallery.
type MeshViewer interface {
	ShowMesh(ctx context.Context, mesh Asset) error
}

// Pipeline lists a task's previews, classifies them and loads the images.
type Pipeline struct {
	remote   Remote
	loader   Loader
	logger   *slog.Logger
	settings config.Previews
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithLoader overrides the image loader.
func WithLoader(loader Loader) Option {
	return func(p *Pipeline) {
		if loader != nil {
			p.loader = loader
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline builds a pipeline using the [previews] configuration section.
func NewPipeline(client Remote, settings config.Previews, opts ...Option) *Pipeline {
	p := &Pipeline{
		remote:   client,
		loader:   NewHTTPLoader(time.Duration(settings.LoadTimeoutSeconds) * time.Second),
		logger:   logging.NewNop(),
		settings: settings,
	}
	if len(p.settings.MeshExtensions) == 0 {
		p.settings.MeshExtensions = []string{".ply"}
	}
	if p.settings.MaxConcurrentLoads <= 0 {
		p.settings.MaxConcurrentLoads = defaultMaxLoads
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "previews")
	return p
}

// List fetches the preview listing for a task.
func (p *Pipeline) List(ctx context.Context, taskID int64) (Listing, error) {
	var listing Listing
	env, err := p.remote.Get(ctx, "tasks/"+strconv.FormatInt(taskID, 10)+"/reconstruction-previews", nil)
	if err != nil {
		return listing, err
	}
	if err := env.Decode(&listing); err != nil {
		return listing, services.Wrap(services.ErrParse, "previews", "list", "decode listing", err)
	}
	return listing, nil
}

// Stream starts loading a task's previews. The returned gallery holds the
// mesh, placeholder and warnings; loaded images arrive on the channel in
// completion order and the channel is closed when every load has finished.
func (p *Pipeline) Stream(ctx context.Context, taskID int64) (Gallery, <-chan Asset) {
	ctx = services.WithTaskID(ctx, taskID)
	logger := logging.WithContext(ctx, p.logger)

	gallery := Gallery{TaskID: taskID}
	out := make(chan Asset)

	listing, err := p.List(ctx, taskID)
	if err != nil {
		logging.WarnWithContext(logger, "preview listing failed", "previews_list_failed",
			logging.String(logging.FieldImpact, "gallery shows a placeholder"),
			logging.Error(err),
		)
		gallery.Placeholder = placeholder(err.Error())
		close(out)
		return gallery, out
	}
	if len(listing.Previews) == 0 {
		gallery.Placeholder = placeholder(listing.Message)
		close(out)
		return gallery, out
	}

	images, mesh, meshCount := p.classify(listing)
	gallery.LastModified = strings.TrimSpace(listing.LastModified)
	if mesh != nil {
		gallery.Mesh = mesh
		if meshCount > 1 {
			warning := fmt.Sprintf("listing contains %d mesh entries; showing the last one (%s)", meshCount, mesh.Name)
			gallery.Warnings = append(gallery.Warnings, warning)
			logging.WarnWithContext(logger, "multiple mesh previews", "previews_mesh_ambiguous",
				logging.Int("mesh_count", meshCount),
				logging.String("selected", mesh.URL),
				logging.String(logging.FieldImpact, "earlier mesh entries are not displayed"),
				logging.String(logging.FieldErrorHint, "the service should list at most one mesh"),
			)
		}
	}

	go p.loadAll(ctx, images, out)
	return gallery, out
}

// Load runs Stream to completion and returns the finished gallery.
func (p *Pipeline) Load(ctx context.Context, taskID int64) Gallery {
	gallery, assets := p.Stream(ctx, taskID)
	for asset := range assets {
		gallery.Images = append(gallery.Images, asset)
	}
	return gallery
}

// ShowMesh hands the gallery's mesh to viewer. Galleries without a mesh are
// left alone.
func (g Gallery) ShowMesh(ctx context.Context, viewer MeshViewer) error {
	if g.Mesh == nil || viewer == nil {
		return nil
	}
	return viewer.ShowMesh(ctx, *g.Mesh)
}

// classify splits a listing into images and the mesh. When several mesh
// entries exist the last one is kept and meshCount reports how many there were.
func (p *Pipeline) classify(listing Listing) (images []Asset, mesh *Asset, meshCount int) {
	for _, raw := range listing.Previews {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name := assetName(raw)
		if p.isMesh(raw) {
			meshCount++
			mesh = &Asset{
				URL:          raw,
				Name:         name,
				Kind:         KindMesh,
				LastModified: strings.TrimSpace(listing.LastModified),
				OpenURL:      raw,
			}
			continue
		}
		asset := Asset{
			URL:          raw,
			Name:         name,
			Kind:         KindImage,
			LastModified: strings.TrimSpace(listing.LastModified),
			OpenURL:      raw,
			Description:  name,
		}
		if name == p.settings.PanoramaFilename {
			asset.Panorama = true
			asset.OpenURL = panoramaOpenURL(p.settings.PanoramaURL, p.settings.PageURL, raw)
		}
		images = append(images, asset)
	}
	return images, mesh, meshCount
}

func (p *Pipeline) isMesh(raw string) bool {
	path := raw
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	path = strings.ToLower(path)
	for _, ext := range p.settings.MeshExtensions {
		if strings.HasSuffix(path, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func (p *Pipeline) loadAll(ctx context.Context, images []Asset, out chan<- Asset) {
	defer close(out)

	sem := make(chan struct{}, p.settings.MaxConcurrentLoads)
	var wg sync.WaitGroup
	for _, asset := range images {
		wg.Add(1)
		go func(asset Asset) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			loaded, err := p.loader.Load(ctx, asset)
			<-sem
			if err != nil {
				loaded = asset
				loaded.Err = err
				loaded.Description = "Could not load " + asset.Name
				p.logger.Debug("preview image failed to load",
					logging.String("url", asset.URL),
					logging.Error(err),
				)
			}
			select {
			case out <- loaded:
			case <-ctx.Done():
			}
		}(asset)
	}
	wg.Wait()
}
