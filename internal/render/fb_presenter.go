package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
	"time"

	fb "github.com/gonutz/framebuffer"
	"github.com/rook-computer/posterkit/internal/render/layout"
	xdraw "golang.org/x/image/draw"
)

const DefaultFramebufferDevice = "/dev/fb0"

// FBPresenter shows editor surfaces on a Linux framebuffer, letterboxed
// onto a dark backdrop.
type FBPresenter struct {
	Device string
	FPS    int
	Logger Logger

	fbDev       *fb.Device
	screen      *image.RGBA
	running     atomic.Bool
	lastVersion uint64
	shown       bool
}

func NewFBPresenter(device string) *FBPresenter {
	return &FBPresenter{Device: device, FPS: 30}
}

func (p *FBPresenter) Start(ctx context.Context) error {
	device := p.Device
	if device == "" {
		device = DefaultFramebufferDevice
	}
	dev, err := fb.Open(device)
	if err != nil {
		return err
	}
	p.fbDev = dev
	bounds := dev.Bounds()
	p.screen = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if p.Logger != nil {
		p.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d", device, bounds.Dx(), bounds.Dy())
	}
	p.running.Store(true)
	return nil
}

func (p *FBPresenter) Stop() error {
	p.running.Store(false)
	if p.fbDev != nil {
		p.fbDev.Close()
		p.fbDev = nil
	}
	return nil
}

// Present letterboxes frame onto the framebuffer.
func (p *FBPresenter) Present(frame image.Image) {
	if !p.running.Load() || p.fbDev == nil || frame == nil {
		return
	}
	screenBounds := p.screen.Bounds()
	draw.Draw(p.screen, screenBounds, &image.Uniform{C: color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}}, image.Point{}, draw.Src)

	frameBounds := frame.Bounds()
	place := layout.Letterbox(float64(screenBounds.Dx()), float64(screenBounds.Dy()), float64(frameBounds.Dx()), float64(frameBounds.Dy()))
	xdraw.ApproxBiLinear.Scale(p.screen, place.Rect(), frame, frameBounds, xdraw.Over, nil)

	_ = blitToFB(p.fbDev, p.screen)
}

// RunLoop polls source at the configured frame rate and pushes new
// versions to the display until ctx is done.
func (p *FBPresenter) RunLoop(ctx context.Context, source FrameSource) {
	fps := p.FPS
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	lastLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, version, ok := source()
			if !ok {
				continue
			}
			if p.shown && version == p.lastVersion {
				continue
			}
			p.Present(frame)
			p.shown = true
			p.lastVersion = version
			if p.Logger != nil && time.Since(lastLog) > time.Second {
				p.Logger.Infof("fb", "presented version %d", version)
				lastLog = time.Now()
			}
		}
	}
}

// blitToFB copies the screen buffer pixel by pixel; the device applies its
// own pixel format.
func blitToFB(dev *fb.Device, screen *image.RGBA) error {
	if dev == nil {
		return nil
	}
	bounds := dev.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			pixel := screen.RGBAAt(x, y)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
	return nil
}
