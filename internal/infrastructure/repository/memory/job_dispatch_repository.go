package memory

import (
	"context"
	"sync"

	"github.com/smuti/greydb-api/internal/domain/jobscheduler"
)

type dispatchEntry struct {
	event      jobscheduler.DispatchEvent
	deliveries int
}

// JobDispatchRepository merges events per dispatch id with the same rules as
// the job_dispatches upsert: terminal states stick and each terminal event
// counts one delivery.
type JobDispatchRepository struct {
	mu      sync.RWMutex
	entries map[string]*dispatchEntry
	order   []string
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{entries: make(map[string]*dispatchEntry)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[event.DispatchID]
	if !ok {
		entry = &dispatchEntry{event: event}
		r.entries[event.DispatchID] = entry
		r.order = append(r.order, event.DispatchID)
	} else if !entry.event.Terminal() || event.Terminal() {
		if event.Payload == nil {
			event.Payload = entry.event.Payload
		}
		if event.Summary == nil {
			event.Summary = entry.event.Summary
		}
		entry.event = event
	}
	if event.Terminal() {
		entry.deliveries++
	}
	return nil
}

func (r *JobDispatchRepository) Get(dispatchID string) (jobscheduler.DispatchEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[dispatchID]
	if !ok {
		return jobscheduler.DispatchEvent{}, false
	}
	return entry.event, true
}

// Deliveries reports how many completed or failed runs a dispatch has seen.
func (r *JobDispatchRepository) Deliveries(dispatchID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.entries[dispatchID]; ok {
		return entry.deliveries
	}
	return 0
}

func (r *JobDispatchRepository) List() []jobscheduler.DispatchEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]jobscheduler.DispatchEvent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].event)
	}
	return out
}
