package web

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - service:   :8080
// - simulator: not served
type ServerConfig struct {
	ListenAddr string
	DevMode    bool

	// StaticDir, when set to an existing directory, is served at "/".
	StaticDir string

	// MaxUploadBytes caps multipart image uploads.
	MaxUploadBytes int64
}
