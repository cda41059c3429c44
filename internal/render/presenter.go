package render

import (
	"context"
	"image"
)

// FrameSource yields the surface a presenter should show. ok is false when
// there is nothing to show.
type FrameSource func() (frame image.Image, version uint64, ok bool)

// Presenter mirrors editor surfaces onto a physical display.
type Presenter interface {
	Start(ctx context.Context) error
	Stop() error
	Present(frame image.Image)
	RunLoop(ctx context.Context, source FrameSource)
}

type NoopPresenter struct{}

func (NoopPresenter) Start(ctx context.Context) error                 { return nil }
func (NoopPresenter) Stop() error                                     { return nil }
func (NoopPresenter) Present(frame image.Image)                       {}
func (NoopPresenter) RunLoop(ctx context.Context, source FrameSource) {}
