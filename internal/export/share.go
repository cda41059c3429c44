package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rook-computer/posterkit/internal/render"
)

// ErrShareUnsupported reports that the host has no native share capability.
var ErrShareUnsupported = errors.New("native sharing is not supported on this device")

// DefaultShareMessage is shown when the share falls back to web links.
const DefaultShareMessage = "Sharing images directly isn't supported here. Download the image, or share a link instead."

// NativeSharer hands image bytes to the host platform.
type NativeSharer interface {
	Share(ctx context.Context, d Download, title, text string) error
}

// ShareOptions describes what is being shared.
type ShareOptions struct {
	// PageURL is the link the web fallbacks carry.
	PageURL string
	Title   string
	Text    string

	// ImageURL is optional; Pinterest needs a hosted image to pin.
	ImageURL string
}

// ShareLink is one web-share fallback target.
type ShareLink struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// ShareResult reports how a share went. Native is true when the host took
// the image; otherwise Links, QRCode and Message describe the fallback.
type ShareResult struct {
	Native  bool        `json:"native"`
	Links   []ShareLink `json:"links,omitempty"`
	QRCode  string      `json:"qrCode,omitempty"`
	Message string      `json:"message,omitempty"`
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Share tries the native sharer and falls back to web links. It never
// returns an error; failures end up in the result message.
func Share(ctx context.Context, sharer NativeSharer, d Download, opts ShareOptions, logger Logger) ShareResult {
	if sharer != nil {
		err := sharer.Share(ctx, d, opts.Title, opts.Text)
		if err == nil {
			return ShareResult{Native: true}
		}
		if logger != nil && !errors.Is(err, ErrShareUnsupported) {
			logger.Errorf("export", "native share failed: %v", err)
		}
	}
	return Fallback(opts)
}

// Fallback builds the web-share links for opts. The links only carry the
// page URL, never the image bytes.
func Fallback(opts ShareOptions) ShareResult {
	res := ShareResult{Message: DefaultShareMessage}
	if strings.TrimSpace(opts.PageURL) == "" {
		return res
	}
	res.Links = ShareLinks(opts)
	if png, err := render.QRCodePNG(opts.PageURL, 256); err == nil {
		res.QRCode = DataURI(Download{ContentType: "image/png", Data: png})
	}
	return res
}

// ShareLinks returns the per-network share URLs for the page link.
func ShareLinks(opts ShareOptions) []ShareLink {
	page := url.QueryEscape(opts.PageURL)
	text := url.QueryEscape(strings.TrimSpace(opts.Title + " " + opts.Text))
	links := []ShareLink{
		{Network: "facebook", URL: "https://www.facebook.com/sharer/sharer.php?u=" + page},
		{Network: "x", URL: "https://twitter.com/intent/tweet?url=" + page + "&text=" + text},
		{Network: "whatsapp", URL: "https://api.whatsapp.com/send?text=" + text + "%20" + page},
		{Network: "linkedin", URL: "https://www.linkedin.com/sharing/share-offsite/?url=" + page},
	}
	pin := "https://pinterest.com/pin/create/button/?url=" + page + "&description=" + text
	if opts.ImageURL != "" {
		pin += "&media=" + url.QueryEscape(opts.ImageURL)
	}
	return append(links, ShareLink{Network: "pinterest", URL: pin})
}

// HTTPSharer posts the image to a host share endpoint as multipart form
// data, for kiosks and wrappers that expose sharing over HTTP.
type HTTPSharer struct {
	Endpoint string
	Client   *http.Client
	Timeout  time.Duration
}

func NewHTTPSharer(endpoint string) *HTTPSharer {
	return &HTTPSharer{Endpoint: endpoint, Client: http.DefaultClient, Timeout: 10 * time.Second}
}

func (s *HTTPSharer) Share(ctx context.Context, d Download, title, text string) error {
	if s == nil || strings.TrimSpace(s.Endpoint) == "" {
		return ErrShareUnsupported
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("title", title)
	_ = mw.WriteField("text", text)
	part, err := mw.CreateFormFile("file", d.Filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(d.Data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("share endpoint: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode == http.StatusNotImplemented, resp.StatusCode == http.StatusNotFound:
		return ErrShareUnsupported
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("share endpoint: status %d", resp.StatusCode)
	}
	return nil
}
