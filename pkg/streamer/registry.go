package streamer

import (
	"sync"

	"github.com/pkg/errors"
)

// The streaming library is an optional collaborator: a provider links itself
// into the binary and registers from an init function, the same way
// database/sql drivers do. Nothing in this repository registers one.

var (
	mu        sync.Mutex
	providers = make(map[string]Streamer)
)

// Register makes a streamer available under the given name. It panics when
// the name is already taken or the streamer is nil, since both are wiring
// mistakes that should fail at process start.
func Register(name string, s Streamer) {
	mu.Lock()
	defer mu.Unlock()
	if s == nil {
		panic("streamer: Register called with nil streamer")
	}
	if _, dup := providers[name]; dup {
		panic("streamer: Register called twice for " + name)
	}
	providers[name] = s
}

// Default returns the registered streamer. With no provider linked in, the
// error carries the remediation: this is the dependency-missing failure, not
// a per-call condition.
func Default() (Streamer, error) {
	mu.Lock()
	defer mu.Unlock()

	switch len(providers) {
	case 0:
		return nil, errors.New(
			"no tensor streamer is registered: link a streamer provider into the binary " +
				"and register it via streamer.Register from an init function")
	case 1:
		for _, s := range providers {
			return s, nil
		}
	}
	return nil, errors.Errorf("%d tensor streamers registered, use Get to pick one of them", len(providers))
}

// Get returns the streamer registered under name.
func Get(name string) (Streamer, error) {
	mu.Lock()
	defer mu.Unlock()
	if s, ok := providers[name]; ok {
		return s, nil
	}
	return nil, errors.Errorf("no tensor streamer registered under %q", name)
}

// for tests
func reset() {
	mu.Lock()
	defer mu.Unlock()
	providers = make(map[string]Streamer)
}
