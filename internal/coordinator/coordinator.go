package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/muurk/daikin-humid/internal/deviceclient"
	"github.com/muurk/daikin-humid/internal/logging"
	"github.com/muurk/daikin-humid/internal/protocol"
)

// refreshKey is the single-flight key; there is only ever one kind of cycle.
const refreshKey = "refresh"

// ErrNoController is returned by SetControl when the fetcher cannot send
// control commands.
var ErrNoController = errors.New("coordinator: fetcher does not support control commands")

// Fetcher reads the three responses that make up a snapshot.
// *deviceclient.Client satisfies it.
type Fetcher interface {
	GetControlInfo(ctx context.Context) (protocol.Response, error)
	GetSensorInfo(ctx context.Context) (protocol.Response, error)
	GetUnitStatus(ctx context.Context) (protocol.Response, error)
}

// Controller sends control commands. SetControl uses it when the Fetcher
// also implements it.
type Controller interface {
	SetControlInfo(ctx context.Context, cmd deviceclient.ControlCommand) (protocol.Response, error)
}

// Observer is called once per completed cycle, outside all coordinator
// locks. Observers must not block for long; they run on the refreshing
// goroutine.
type Observer func(Update)

// SubscriptionID identifies a registered observer.
type SubscriptionID uint64

// flight is the bookkeeping for one in-flight cycle.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
	done    bool
}

// Coordinator owns the latest known device state.
//
// It is the only writer of the current snapshot. Refreshes are
// single-flight: callers arriving while a cycle is running join it instead
// of starting another.
type Coordinator struct {
	fetcher Fetcher
	logger  *zap.Logger
	now     func() time.Time

	group    singleflight.Group
	flightMu sync.Mutex
	current  *flight

	mu       sync.RWMutex
	snapshot *Snapshot
	status   Status

	obsMu     sync.Mutex
	observers map[SubscriptionID]Observer
	nextID    SubscriptionID
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logging.OrNop(l)
	}
}

// WithClock overrides the time source used to stamp cycles.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an idle coordinator reading from fetcher.
func New(fetcher Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:   fetcher,
		logger:    zap.NewNop(),
		now:       time.Now,
		observers: make(map[SubscriptionID]Observer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestRefresh runs a refresh cycle, or joins the one in flight, and
// returns its Update. The error is the cycle's fault, or ctx.Err() when
// this caller stopped waiting while others still wait on the cycle.
//
// The cycle does not inherit any caller's cancellation. It is canceled only
// once every caller waiting on it has given up; it then fails and the
// previous snapshot is kept.
func (c *Coordinator) RequestRefresh(ctx context.Context) (Update, error) {
	c.flightMu.Lock()
	f := c.current
	if f == nil {
		cycleCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: cycleCtx, cancel: cancel}
		c.current = f
	}
	f.waiters++
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		defer c.land(f)
		return c.cycle(f.ctx), nil
	})
	c.flightMu.Unlock()

	select {
	case res := <-ch:
		c.leave(f)
		u := res.Val.(Update)
		return u, u.Err
	case <-ctx.Done():
		if !c.leave(f) {
			return Update{}, ctx.Err()
		}
		// Last waiter gone: the cycle was canceled and ends promptly.
		res := <-ch
		u := res.Val.(Update)
		return u, u.Err
	}
}

// leave drops one waiter from f and cancels the cycle when it was the last.
// It reports whether the cycle was canceled.
func (c *Coordinator) leave(f *flight) bool {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()
	f.waiters--
	if f.waiters > 0 || f.done {
		return false
	}
	f.cancel()
	// Callers arriving from now on start a new cycle instead of joining this one.
	if c.current == f {
		c.current = nil
		c.group.Forget(refreshKey)
	}
	return true
}

// land retires f once its cycle has returned, so the next caller starts a
// fresh cycle.
func (c *Coordinator) land(f *flight) {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()
	f.done = true
	f.cancel()
	if c.current == f {
		c.current = nil
		c.group.Forget(refreshKey)
	}
}

// cycle fetches control, sensors and status in that order and commits the
// result. Nothing is committed unless all three succeed.
func (c *Coordinator) cycle(ctx context.Context) Update {
	start := c.now()
	c.setRefreshing()

	c.logger.Debug("Refresh cycle started")

	steps := []struct {
		label string
		fetch func(context.Context) (protocol.Response, error)
	}{
		{LabelControl, c.fetcher.GetControlInfo},
		{LabelSensors, c.fetcher.GetSensorInfo},
		{LabelStatus, c.fetcher.GetUnitStatus},
	}

	responses := make(map[string]protocol.Response, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return c.fail(start, step.label, deviceclient.ClassifyTransportError(err, "", ""))
		}
		resp, err := step.fetch(ctx)
		if err != nil {
			return c.fail(start, step.label, err)
		}
		responses[step.label] = resp
	}

	// A context that ended during the last fetch must not let a snapshot in.
	if err := ctx.Err(); err != nil {
		return c.fail(start, LabelStatus, deviceclient.ClassifyTransportError(err, "", ""))
	}

	finished := c.now()
	snap := NewSnapshot(responses[LabelControl], responses[LabelSensors], responses[LabelStatus], finished)

	c.mu.Lock()
	c.snapshot = snap
	c.status.State = StateReady
	c.status.LastError = nil
	c.status.LastSuccess = finished
	c.status.Successes++
	c.mu.Unlock()

	c.logger.Debug("Refresh cycle succeeded",
		zap.Duration("elapsed", finished.Sub(start)),
		zap.String("control", protocol.Format(snap.Control())),
	)

	u := Update{Snapshot: snap, State: StateReady, Started: start, Finished: finished}
	c.notify(u)
	return u
}

func (c *Coordinator) setRefreshing() {
	c.mu.Lock()
	c.status.State = StateRefreshing
	c.mu.Unlock()
}

func (c *Coordinator) fail(start time.Time, label string, err error) Update {
	finished := c.now()

	c.mu.Lock()
	c.status.State = StateFailed
	c.status.LastError = err
	c.status.LastFailure = finished
	c.status.Failures++
	snap := c.snapshot
	c.mu.Unlock()

	c.logger.Debug("Refresh cycle failed",
		zap.String("stage", label),
		zap.Error(err),
	)

	u := Update{Snapshot: snap, State: StateFailed, Err: err, Started: start, Finished: finished}
	c.notify(u)
	return u
}

// Subscribe registers an observer for completed cycles.
func (c *Coordinator) Subscribe(o Observer) SubscriptionID {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.nextID++
	c.observers[c.nextID] = o
	return c.nextID
}

// Unsubscribe removes an observer. Unknown IDs are ignored.
func (c *Coordinator) Unsubscribe(id SubscriptionID) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	delete(c.observers, id)
}

func (c *Coordinator) notify(u Update) {
	c.obsMu.Lock()
	observers := make([]Observer, 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.obsMu.Unlock()

	for _, o := range observers {
		o(u)
	}
}

// CurrentSnapshot returns the latest successful snapshot, or nil if no
// cycle has succeeded yet.
func (c *Coordinator) CurrentSnapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status.State
}

// LastError returns the fault of the last cycle, or nil if it succeeded.
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status.LastError
}

// Status returns a copy of the coordinator's status.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// SetControl sends cmd to the device and then refreshes so the snapshot
// reflects the change.
//
// The command is not serialised against refreshes. A failed follow-up
// refresh is not reported here; it shows in State and LastError like any
// other failed cycle.
func (c *Coordinator) SetControl(ctx context.Context, cmd deviceclient.ControlCommand) (protocol.Response, error) {
	ctrl, ok := c.fetcher.(Controller)
	if !ok {
		return protocol.Response{}, ErrNoController
	}

	resp, err := ctrl.SetControlInfo(ctx, cmd)
	if err != nil {
		return protocol.Response{}, err
	}
	if ret := resp.Value(protocol.KeyReturn); ret != "" && ret != protocol.ReturnOK {
		c.logger.Warn("Device did not accept control command",
			zap.String("command", cmd.String()),
			zap.String("ret", ret),
		)
	}

	if _, err := c.RequestRefresh(ctx); err != nil {
		c.logger.Warn("Refresh after control command failed", zap.Error(err))
	}
	return resp, nil
}
