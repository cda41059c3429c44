package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxBytes     = 10 << 20
	DefaultMaxPixels    = 40_000_000
	DefaultFetchTimeout = 15 * time.Second
)

var (
	ErrNotImage   = errors.New("not an image")
	ErrTooLarge   = errors.New("image exceeds upload limit")
	ErrBadURL     = errors.New("image url must be absolute http or https")
	ErrEmptyInput = errors.New("empty image data")

	ErrTooManyPixels = errors.New("image dimensions exceed the pixel limit")
)

// DecodeError reports an image that could not be turned into a drawable
// handle. Source names the upload or URL for user-facing notices.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return "image decode failed: " + e.Err.Error()
	}
	return fmt.Sprintf("image decode failed for %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoded is a successfully decoded image.
type Decoded struct {
	Image  image.Image
	Width  int
	Height int
	MIME   string
	Source string
}

type loaderLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Loader turns uploads and remote URLs into decoded images.
//
// Without a Client, Fetch refuses loopback, private and link-local
// destinations unless AllowPrivate is set. A Client, when set, is used as
// is for every fetch.
type Loader struct {
	Client       *http.Client
	AllowPrivate bool
	MaxBytes     int64
	MaxPixels    int64
	Timeout      time.Duration
	Logger       loaderLogger
}

func NewLoader() *Loader {
	return &Loader{MaxBytes: DefaultMaxBytes, MaxPixels: DefaultMaxPixels, Timeout: DefaultFetchTimeout}
}

// Decode reads one image from r. The payload is sniffed before decoding so
// non-image uploads fail fast with ErrNotImage.
func (l *Loader) Decode(r io.Reader, source string) (Decoded, error) {
	if r == nil {
		return Decoded{}, &DecodeError{Source: source, Err: ErrEmptyInput}
	}
	limit := l.maxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Decoded{}, &DecodeError{Source: source, Err: err}
	}
	if len(data) == 0 {
		return Decoded{}, &DecodeError{Source: source, Err: ErrEmptyInput}
	}
	if int64(len(data)) > limit {
		return Decoded{}, &DecodeError{Source: source, Err: ErrTooLarge}
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !filetype.IsImage(data) {
		return Decoded{}, &DecodeError{Source: source, Err: ErrNotImage}
	}

	// Compressed size says little about decoded size; check the header
	// before allocating the frame.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if int64(cfg.Width)*int64(cfg.Height) > l.maxPixels() {
			l.errorf("decode %s refused: %dx%d over pixel limit", source, cfg.Width, cfg.Height)
			return Decoded{}, &DecodeError{Source: source, Err: ErrTooManyPixels}
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		l.errorf("decode %s (%s) failed: %v", source, kind.MIME.Value, err)
		return Decoded{}, &DecodeError{Source: source, Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return Decoded{}, &DecodeError{Source: source, Err: ErrEmptyInput}
	}
	l.infof("decoded %s: %s %dx%d", source, kind.MIME.Value, b.Dx(), b.Dy())
	return Decoded{Image: img, Width: b.Dx(), Height: b.Dy(), MIME: kind.MIME.Value, Source: source}, nil
}

// Fetch downloads and decodes a remote image such as a preset logo or a
// sticker.
func (l *Loader) Fetch(ctx context.Context, rawURL string) (Decoded, error) {
	return l.fetch(ctx, rawURL, l.client(l.AllowPrivate))
}

// FetchTrusted is Fetch for URLs that come from configuration rather than
// from a client, such as picker catalogs served on the local network.
func (l *Loader) FetchTrusted(ctx context.Context, rawURL string) (Decoded, error) {
	return l.fetch(ctx, rawURL, l.client(true))
}

func (l *Loader) fetch(ctx context.Context, rawURL string, client *http.Client) (Decoded, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Decoded{}, &DecodeError{Source: rawURL, Err: ErrBadURL}
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Decoded{}, &DecodeError{Source: rawURL, Err: err}
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		l.errorf("fetch %s failed: %v", rawURL, err)
		return Decoded{}, &DecodeError{Source: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Decoded{}, &DecodeError{Source: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return l.Decode(resp.Body, rawURL)
}

func (l *Loader) client(allowPrivate bool) *http.Client {
	switch {
	case l.Client != nil:
		return l.Client
	case allowPrivate:
		return http.DefaultClient
	}
	return publicClient
}

func (l *Loader) maxPixels() int64 {
	if l.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return l.MaxPixels
}

func (l *Loader) maxBytes() int64 {
	if l.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return l.MaxBytes
}

func (l *Loader) infof(format string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.Infof("assets", format, args...)
	}
}

func (l *Loader) errorf(format string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.Errorf("assets", format, args...)
	}
}
