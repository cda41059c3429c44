package web

import (
	"github.com/rook-computer/posterkit/internal/assets"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/state"
)

// SessionStore abstracts the session registry used by the API.
//
// The concrete implementation is state.NewSessions().
type SessionStore interface {
	Create(preset string, ed *editor.Editor) *state.Session
	Get(id string) (*state.Session, error)
	Delete(id string) bool
	List() []state.SessionInfo
}

// StatusStore exposes the service status.
type StatusStore interface {
	Snapshot() state.State
}

// EditorFactory builds an editor for a new session.
type EditorFactory func(preset string, mode editor.Mode) (*editor.Editor, error)

// sysLogger is the component-tagged logging shape used across packages.
// It is intentionally tiny so callers can pass existing loggers without adapters.
type sysLogger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type APIV1Deps struct {
	Sessions       SessionStore
	Status         StatusStore
	NewEditor      EditorFactory
	DefaultPreset  string
	MaxUploadBytes int64
	DevMode        bool
	Logger         sysLogger
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Sessions == nil {
		out.Sessions = state.NewSessions()
	}
	if out.Status == nil {
		out.Status = state.NewStore()
	}
	if out.NewEditor == nil {
		out.NewEditor = func(preset string, mode editor.Mode) (*editor.Editor, error) {
			return editor.New(preset, editor.Options{Mode: mode})
		}
	}
	if out.DefaultPreset == "" {
		out.DefaultPreset = "square"
	}
	if out.MaxUploadBytes <= 0 {
		out.MaxUploadBytes = assets.DefaultMaxBytes
	}
	if out.Logger == nil {
		out.Logger = noopLogger{}
	}
	return out
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}
