// Package sync debounces plan document writes so rapid edits collapse into
// a single storage save.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/cheatday/planner/pkg/events"
	"github.com/cheatday/planner/pkg/metrics"
	"github.com/cheatday/planner/pkg/models"
	"github.com/cheatday/planner/pkg/planstore"
)

// DefaultDebounce matches the client-side save delay.
const DefaultDebounce = 2000 * time.Millisecond

// ErrSessionExpired marks a save rejected by the backend for lack of a
// valid session. The controller reports it through OnSessionExpired instead
// of parking in the error state.
var ErrSessionExpired = errors.New("session expired")

// State is the controller's sync lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateSynced  State = "synced"
	StateError   State = "error"
)

// Callbacks are optional hooks invoked outside the controller's lock.
type Callbacks struct {
	OnState          func(State)
	OnSessionExpired func()
}

// Controller owns the pending document and the debounce timer. Schedule
// replaces any pending save; only the newest snapshot reaches storage.
// A failed save parks in the error state; no automatic retry.
type Controller struct {
	store       planstore.Store
	backendName string
	emitter     *events.Emitter
	logger      ectologger.Logger
	debounce    time.Duration
	callbacks   Callbacks

	mu         sync.Mutex
	timer      *time.Timer
	pending    *models.PlanSet
	state      State
	lastSynced time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController returns an idle controller.
func NewController(store planstore.Store, backendName string, emitter *events.Emitter, logger ectologger.Logger, debounce time.Duration, callbacks Callbacks) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:       store,
		backendName: backendName,
		emitter:     emitter,
		logger:      logger,
		debounce:    debounce,
		callbacks:   callbacks,
		state:       StateIdle,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// State returns the current sync state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastSynced returns when the last successful save finished, zero if never.
func (c *Controller) LastSynced() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSynced
}

// Hydrate loads the stored document once at startup. Absent data returns
// (nil, nil) and leaves the state synced so a fresh document can be seeded.
func (c *Controller) Hydrate(ctx context.Context) (*models.PlanSet, error) {
	c.setState(StateSyncing)
	start := time.Now()

	set, err := c.store.Load(ctx)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordDocumentLoad(c.backendName, "error", elapsed)
		c.logger.WithContext(ctx).WithError(err).Error("hydrate failed")
		c.setState(StateError)
		return nil, err
	}

	metrics.RecordDocumentLoad(c.backendName, "success", elapsed)
	if set != nil && c.emitter != nil {
		c.emitter.EmitPlanSetLoaded(ctx, *set)
	}
	c.setState(StateSynced)
	return set, nil
}

// Schedule records the snapshot and arms the debounce timer. A snapshot
// scheduled while a timer is pending replaces the earlier one and restarts
// the delay.
func (c *Controller) Schedule(set models.PlanSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = &set
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.fire)
}

// Flush saves any pending snapshot immediately, bypassing the debounce.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	set := c.pending
	c.pending = nil
	c.mu.Unlock()

	if set == nil {
		return nil
	}
	return c.save(ctx, *set)
}

// Save writes the snapshot immediately without touching any pending timer.
func (c *Controller) Save(ctx context.Context, set models.PlanSet) error {
	return c.save(ctx, set)
}

// Close cancels any pending save without writing it.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) fire() {
	c.mu.Lock()
	set := c.pending
	c.pending = nil
	c.timer = nil
	c.mu.Unlock()

	if set == nil {
		return
	}
	_ = c.save(c.ctx, *set)
}

func (c *Controller) save(ctx context.Context, set models.PlanSet) error {
	c.setState(StateSyncing)
	start := time.Now()

	err := c.store.Save(ctx, set)
	elapsed := time.Since(start).Seconds()

	if errors.Is(err, ErrSessionExpired) {
		metrics.RecordDocumentSave(c.backendName, "unauthorized", elapsed, 0)
		c.setState(StateError)
		if c.callbacks.OnSessionExpired != nil {
			c.callbacks.OnSessionExpired()
		}
		return err
	}
	if err != nil {
		metrics.RecordDocumentSave(c.backendName, "error", elapsed, 0)
		c.logger.WithContext(ctx).WithError(err).Error("debounced save failed")
		c.setState(StateError)
		return err
	}

	size := 0
	if raw, marshalErr := json.Marshal(set); marshalErr == nil {
		size = len(raw)
	}
	metrics.RecordDocumentSave(c.backendName, "success", elapsed, size)

	if c.emitter != nil {
		c.emitter.EmitPlanSetSaved(ctx, set)
	}

	c.mu.Lock()
	c.lastSynced = time.Now()
	c.mu.Unlock()
	c.setState(StateSynced)
	return nil
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	callback := c.callbacks.OnState
	c.mu.Unlock()

	if callback != nil {
		callback(state)
	}
}
