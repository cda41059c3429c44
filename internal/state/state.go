package state

import "sync"

type Phase int

const (
	BOOTING Phase = iota
	READY
	STOPPING
)

func (p Phase) String() string {
	switch p {
	case READY:
		return "ready"
	case STOPPING:
		return "stopping"
	default:
		return "booting"
	}
}

type ServiceInfo struct {
	URL        string
	PreviewOn  bool
	PreviewErr string
}

type State struct {
	Phase   Phase
	Service ServiceInfo
}

// Store holds the service-wide status shown by /status and the preview.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) UpdateService(info ServiceInfo) {
	store.mu.Lock()
	store.state.Service = info
	store.mu.Unlock()
}
