// Package export serializes rendered surfaces into downloadable files.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format is an export file format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	WebP Format = "webp"
)

// DefaultJPEGQuality matches the quality browsers use for canvas exports
// unless told otherwise.
const DefaultJPEGQuality = 0.9

// BaseName is the file name stem of every download.
const BaseName = "poster"

// ParseFormat accepts format names and common aliases.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")) {
	case "", "png", "image/png":
		return PNG, nil
	case "jpg", "jpeg", "image/jpeg":
		return JPEG, nil
	case "webp", "image/webp":
		return WebP, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

func (f Format) ContentType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case WebP:
		return "image/webp"
	default:
		return "image/png"
	}
}

func (f Format) Extension() string {
	switch f {
	case JPEG:
		return ".jpg"
	case WebP:
		return ".webp"
	default:
		return ".png"
	}
}

// Filename returns the download name for f, e.g. poster.jpg.
func Filename(f Format) string { return BaseName + f.Extension() }

// Options tunes lossy encoders. Quality is in (0, 1]; zero means the
// default. PNG ignores it. WebP at quality 1 is lossless.
type Options struct {
	Format  Format
	Quality float64
}

func (o Options) quality() float64 {
	if o.Quality <= 0 || math.IsNaN(o.Quality) {
		return DefaultJPEGQuality
	}
	if o.Quality > 1 {
		return 1
	}
	return o.Quality
}

// Download is a ready-to-save file.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportImage encodes img synchronously. Encoding the same pixels twice
// yields identical bytes.
func ExportImage(img image.Image, opts Options) (Download, error) {
	if img == nil {
		return Download{}, fmt.Errorf("nothing to export")
	}
	if opts.Format == "" {
		opts.Format = PNG
	}
	var buf bytes.Buffer
	var err error
	switch opts.Format {
	case PNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	case JPEG:
		q := int(math.Round(opts.quality() * 100))
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q))
	case WebP:
		q := opts.quality()
		err = webp.Encode(&buf, img, &webp.Options{Lossless: q >= 1, Quality: float32(q * 100)})
	default:
		return Download{}, fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if err != nil {
		return Download{}, fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	return Download{
		Filename:    Filename(opts.Format),
		ContentType: opts.Format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

// DataURI returns the download inlined as a data: URI.
func DataURI(d Download) string {
	return "data:" + d.ContentType + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}
