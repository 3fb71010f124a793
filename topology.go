package metrics

import "sync"

// ProcessTopology tells the registry whether it runs in the master process of
// a pre-fork server. Per-process counters must not start before the worker
// forks, so in that case the collect timer is started from AfterFork.
type ProcessTopology interface {
	IsPreforkMaster() bool
	AfterFork(fn func())
}

// SingleProcess is the topology of a process that never forks workers.
type SingleProcess struct{}

// IsPreforkMaster always reports false.
func (SingleProcess) IsPreforkMaster() bool { return false }

// AfterFork runs fn right away: there is no fork to wait for.
func (SingleProcess) AfterFork(fn func()) { fn() }

// PreforkHook defers callbacks until Forked is called by the embedding
// server's post-fork hook. Until then it reports a pre-fork master.
type PreforkHook struct {
	mu        sync.Mutex
	forked    bool
	callbacks []func()
}

// NewPreforkHook returns a hook in the pre-fork state.
func NewPreforkHook() *PreforkHook {
	return &PreforkHook{}
}

// IsPreforkMaster reports true until Forked has been called.
func (h *PreforkHook) IsPreforkMaster() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.forked
}

// AfterFork queues fn until Forked. After Forked it runs fn immediately.
func (h *PreforkHook) AfterFork(fn func()) {
	h.mu.Lock()
	if !h.forked {
		h.callbacks = append(h.callbacks, fn)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()
	fn()
}

// Forked runs the queued callbacks once. Later calls do nothing.
func (h *PreforkHook) Forked() {
	h.mu.Lock()
	if h.forked {
		h.mu.Unlock()
		return
	}
	h.forked = true
	callbacks := h.callbacks
	h.callbacks = nil
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
