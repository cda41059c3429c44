package editor

import (
	"context"
	"image"

	"github.com/rook-computer/posterkit/internal/export"
	"github.com/rook-computer/posterkit/internal/render"
)

// Surface returns a copy of the on-screen surface, selection included,
// repainting first if the model changed since the last call.
func (e *Editor) Surface() (*image.RGBA, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		e.surface = e.renderer.NewSurface(e.comp)
		e.dirty = true
	}
	if e.dirty {
		e.renderer.Render(e.surface, e.comp, render.Options{Selection: true})
		e.dirty = false
	}
	out := image.NewRGBA(e.surface.Bounds())
	copy(out.Pix, e.surface.Pix)
	return out, e.comp.Version()
}

// Frame adapts Surface to a render.FrameSource.
func (e *Editor) Frame() (image.Image, uint64, bool) {
	img, v := e.Surface()
	return img, v, true
}

// Export renders the composition without selection decorations and
// encodes it. A zero quality takes the editor's JPEG quality.
func (e *Editor) Export(opts export.Options) (export.Download, error) {
	e.mu.Lock()
	img := e.renderer.RenderImage(e.comp, render.Options{})
	e.mu.Unlock()
	if opts.Quality <= 0 {
		opts.Quality = e.quality
	}
	return export.ExportImage(img, opts)
}

// DataURI exports and inlines the result.
func (e *Editor) DataURI(opts export.Options) (string, error) {
	d, err := e.Export(opts)
	if err != nil {
		return "", err
	}
	return export.DataURI(d), nil
}

// Share exports a PNG and offers it to the native sharer, falling back to
// web links. Empty fields of opts take the editor's share settings.
func (e *Editor) Share(ctx context.Context, opts export.ShareOptions) export.ShareResult {
	if opts.PageURL == "" {
		opts.PageURL = e.share.PageURL
	}
	if opts.Title == "" {
		opts.Title = e.share.Title
	}
	if opts.Text == "" {
		opts.Text = e.share.Text
	}
	if opts.ImageURL == "" {
		opts.ImageURL = e.share.ImageURL
	}
	d, err := e.Export(export.Options{Format: export.PNG})
	if err != nil {
		e.errorf("share export failed: %v", err)
		e.notify("error", "Couldn't prepare the image for sharing.")
		return export.Fallback(opts)
	}
	res := export.Share(ctx, e.sharer, d, opts, e.logger)
	if !res.Native {
		e.notify("info", res.Message)
	}
	return res
}
