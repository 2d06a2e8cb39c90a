package store

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Action names the store operation behind an Event
type Action string

const (
	ActionAddPushup      Action = "add_pushup"
	ActionUpdateSettings Action = "update_settings"
	ActionSetTodayGoal   Action = "set_today_goal"
	ActionClearAllData   Action = "clear_all_data"
	ActionMigrate        Action = "migrate"
)

// Event tells listeners which slice changed. Listeners read the new
// state from the store.
type Event struct {
	Slice  Slice
	Action Action
}

type Listener func(Event)

type subscription struct {
	id       string
	listener Listener
}

// registry delivers events to listeners in subscription order
type registry struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{logger: logger}
}

func (r *registry) subscribe(l Listener) string {
	id := uuid.New().String()

	r.mu.Lock()
	r.subs = append(r.subs, subscription{id: id, listener: l})
	r.mu.Unlock()

	r.logger.Debug("listener added", "sub_id", id)
	return id
}

func (r *registry) unsubscribe(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = slices.DeleteFunc(r.subs, func(s subscription) bool {
		return s.id == id
	})
}

// publish runs every listener. The lock is not held while listeners run
// so they may read the store or unsubscribe.
func (r *registry) publish(event Event) {
	r.mu.RLock()
	targets := slices.Clone(r.subs)
	r.mu.RUnlock()

	for _, sub := range targets {
		r.deliver(sub, event)
	}
}

func (r *registry) deliver(sub subscription, event Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("listener panicked",
				"sub_id", sub.id,
				"slice", event.Slice,
				"action", event.Action,
				"panic", rec)
		}
	}()
	sub.listener(event)
}
