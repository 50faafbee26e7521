package async

import (
	"log/slog"
	"sync"
)

// Registry maps job ids to their single Actor. Actors live for the process
// lifetime; nothing is evicted.
type Registry struct {
	run    Summarizer
	logger *slog.Logger
	opts   []ActorOption

	mu     sync.Mutex
	actors map[string]*Actor
}

func NewRegistry(run Summarizer, logger *slog.Logger, opts ...ActorOption) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		run:    run,
		logger: logger,
		opts:   opts,
		actors: make(map[string]*Actor),
	}
}

// GetOrCreate returns the actor for id, creating it in Queued state on first use.
func (r *Registry) GetOrCreate(id string) *Actor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.actors[id]; ok {
		return a
	}
	a := NewActor(id, r.run, r.logger, r.opts...)
	r.actors[id] = a
	r.logger.Debug("registry.actor.created", "job_id", id, "actors", len(r.actors))
	return a
}

// Lookup returns the actor for id without creating one.
func (r *Registry) Lookup(id string) (*Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[id]
	return a, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actors)
}
