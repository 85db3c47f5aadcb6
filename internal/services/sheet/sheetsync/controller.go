// Package sheetsync keeps a sheet in step with its remote persistence endpoint.
//
// The controller runs one request at a time. Load replaces the sheet with
// the remote document; Save posts a snapshot and then loads it back. An
// accepted call returns a channel that yields the settled Status once; a
// call made while another request is in flight returns ErrBusy.
package sheetsync

import (
	"context"
	"log"
	"sync"

	apperrors "github.com/louisbranch/charsheet/internal/platform/errors"
	"github.com/louisbranch/charsheet/internal/services/sheet/domain"
	"golang.org/x/sync/semaphore"
)

// ErrBusy reports a Load or Save issued while another request is in flight.
var ErrBusy = apperrors.New(apperrors.CodeSyncBusy, "sync request already in flight")

// Remote is the persistence endpoint.
type Remote interface {
	Fetch(ctx context.Context) (domain.Document, error)
	Save(ctx context.Context, doc domain.Document) error
}

// Target receives loaded documents.
type Target interface {
	ReplaceAll(attrs []domain.Attribute, skills []domain.Skill)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLocale selects the locale for error messages.
func WithLocale(locale string) Option {
	return func(c *Controller) {
		if locale != "" {
			c.locale = locale
		}
	}
}

// WithLogger sets the logger used for failure causes.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller drives the Loading / Ready / Error state machine.
type Controller struct {
	remote Remote
	target Target
	locale string
	logger *log.Logger

	gate     *semaphore.Weighted
	inflight sync.WaitGroup

	mu      sync.Mutex
	status  Status
	subs    map[int]func(Status)
	nextSub int
}

// New creates a controller in StateLoading. Call Start to issue the first
// fetch.
func New(remote Remote, target Target, opts ...Option) *Controller {
	c := &Controller{
		remote: remote,
		target: target,
		logger: log.Default(),
		gate:   semaphore.NewWeighted(1),
		status: Status{State: StateLoading},
		subs:   make(map[int]func(Status)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start issues the initial fetch.
func (c *Controller) Start(ctx context.Context) (<-chan Status, error) {
	return c.Load(ctx)
}

// Load fetches the remote document and replaces the target with it.
func (c *Controller) Load(ctx context.Context) (<-chan Status, error) {
	return c.run(ctx, "load", func(ctx context.Context) Status {
		return c.load(ctx)
	})
}

// Save posts doc and, once the post succeeds, loads the stored copy back.
func (c *Controller) Save(ctx context.Context, doc domain.Document) (<-chan Status, error) {
	return c.run(ctx, "save", func(ctx context.Context) Status {
		if err := c.remote.Save(ctx, doc); err != nil {
			return c.fail(apperrors.Wrap(apperrors.CodeSyncSaveFailed, "save character", err))
		}
		return c.load(ctx)
	})
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe registers fn for every status change. The returned func
// removes the subscription.
func (c *Controller) Subscribe(fn func(Status)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Wait blocks until every issued request has settled.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) run(ctx context.Context, op string, fn func(context.Context) Status) (<-chan Status, error) {
	if !c.gate.TryAcquire(1) {
		c.logger.Printf("%s rejected: %v", op, ErrBusy)
		return nil, ErrBusy
	}
	out := make(chan Status, 1)
	if ctx == nil {
		ctx = context.Background()
	}
	// Issued requests outlive the caller's cancellation.
	ctx = context.WithoutCancel(ctx)

	c.setStatus(Status{State: StateLoading})
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		settled := fn(ctx)
		c.gate.Release(1)
		out <- settled
		close(out)
	}()
	return out, nil
}

func (c *Controller) load(ctx context.Context) Status {
	doc, err := c.remote.Fetch(ctx)
	if err != nil {
		return c.fail(apperrors.Wrap(apperrors.CodeSyncLoadFailed, "fetch character", err))
	}
	c.target.ReplaceAll(doc.Attributes, doc.Skills)
	return c.setStatus(Status{State: StateReady})
}

func (c *Controller) fail(err *apperrors.Error) Status {
	c.logger.Printf("%s: %v", err.Message, err.Cause)
	return c.setStatus(Status{State: StateError, Message: err.LocalizedMessage(c.locale)})
}

func (c *Controller) setStatus(status Status) Status {
	c.mu.Lock()
	c.status = status
	subs := make([]func(Status), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(status)
	}
	return status
}
