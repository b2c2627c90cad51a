package sanction

import (
	"context"
	"fraudwatch/pkg/domain"
	"fraudwatch/pkg/logger"
	"fraudwatch/pkg/metrics"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Releaser removes authors from a Cache once their cooldown elapses. Each
// release is an independent timer, so it fires even if the code path that
// scheduled it has long returned.
type Releaser struct {
	cache    *Cache
	cooldown time.Duration

	mu      sync.Mutex
	pending map[domain.UserID]*time.Timer
	stopped bool
}

func NewReleaser(cache *Cache, cooldown time.Duration) *Releaser {
	return &Releaser{
		cache:    cache,
		cooldown: cooldown,
		pending:  make(map[domain.UserID]*time.Timer),
	}
}

// Schedule removes id from the cache after the cooldown. Scheduling an id
// that already has a pending release restarts its cooldown.
func (r *Releaser) Schedule(ctx context.Context, id domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	if t, ok := r.pending[id]; ok {
		t.Stop()
	}

	// the handler context is usually gone by the time the timer fires
	log := logger.Get(ctx)

	var t *time.Timer
	t = time.AfterFunc(r.cooldown, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		// a restarted or stopped release owns the entry now
		if r.pending[id] != t {
			return
		}
		delete(r.pending, id)
		r.cache.Remove(id)
		metrics.PendingReleases.Set(float64(len(r.pending)))

		log.Info("cooldown elapsed, author released", zap.String("authorID", string(id)))
	})
	r.pending[id] = t
	metrics.PendingReleases.Set(float64(len(r.pending)))
}

// Pending returns the number of scheduled releases.
func (r *Releaser) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pending)
}

// Stop cancels every pending release and rejects new ones. It returns the
// number of releases cancelled. Cancelled authors stay in the cache.
func (r *Releaser) Stop() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	n := 0
	for id, t := range r.pending {
		if t.Stop() {
			n++
		}
		delete(r.pending, id)
	}
	metrics.PendingReleases.Set(0)

	return n
}
