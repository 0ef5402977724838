// Package recipientservice resolves who owns an internal wallet address while
// the address is being typed.
package recipientservice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const (
	defaultDebounce = 500 * time.Millisecond
	defaultCacheTTL = 5 * time.Minute
)

// Backend provides the address lookup endpoint.
//
//go:generate mockgen -source service.go -destination service_mock.go -package recipientservice
type Backend interface {
	FindByAddress(ctx context.Context, address string) (domain.User, error)
}

// ValidAddress reports whether addr can be looked up at all.
func ValidAddress(addr string) bool {
	return domain.IsInternalAddress(addr)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDebounce sets the quiet period after the last input.
func WithDebounce(d time.Duration) Option {
	return func(r *Resolver) {
		r.debounce = d
	}
}

// WithCacheTTL sets how long resolved addresses are remembered.
func WithCacheTTL(d time.Duration) Option {
	return func(r *Resolver) {
		r.cacheTTL = d
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// Resolver debounces address input and publishes the resolution of the
// latest input only. Every Input bumps a generation counter; a lookup whose
// generation is no longer current is dropped when it returns.
type Resolver struct {
	backend  Backend
	debounce time.Duration
	cacheTTL time.Duration
	logger   zerolog.Logger
	resolved *cache.Cache

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	generation  uint64
	timer       *time.Timer
	current     domain.Resolution
	subscribers []func(domain.Resolution)
	closed      bool
}

// New returns a Resolver.
func New(b Backend, opts ...Option) *Resolver {
	r := &Resolver{
		backend:  b,
		debounce: defaultDebounce,
		cacheTTL: defaultCacheTTL,
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.resolved = cache.New(r.cacheTTL, 2*r.cacheTTL)
	r.ctx, r.cancel = context.WithCancel(context.Background())

	return r
}

// Subscribe registers fn for every published resolution. fn runs with the
// resolver locked and must not call back into it.
func (r *Resolver) Subscribe(fn func(domain.Resolution)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscribers = append(r.subscribers, fn)
}

// Current returns the latest published resolution.
func (r *Resolver) Current() domain.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// Input records a new value of the address field.
func (r *Resolver) Input(addr string) {
	addr = strings.TrimSpace(addr)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.generation++
	gen := r.generation

	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	res := domain.Resolution{Address: addr, Generation: gen}

	switch {
	case addr == "":
		res.Status = domain.ResolutionAbsent
	case !ValidAddress(addr):
		res.Status = domain.ResolutionIndeterminate
	default:
		if user, ok := r.cached(addr); ok {
			res.Status = domain.ResolutionResolved
			res.Recipient = user
		} else {
			res.Status = domain.ResolutionPending
			r.timer = time.AfterFunc(r.debounce, func() { r.lookup(gen, addr) })
		}
	}

	r.publishLocked(res)
}

func (r *Resolver) lookup(gen uint64, addr string) {
	r.mu.Lock()
	stale := gen != r.generation || r.closed
	r.mu.Unlock()

	if stale {
		return
	}

	res := r.find(r.ctx, addr)
	res.Generation = gen

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || r.closed {
		r.logger.Debug().Str("address", addr).Uint64("generation", gen).Msg("dropping superseded resolution")
		return
	}

	r.publishLocked(res)
}

// Resolve looks addr up right away, bypassing the debounce.
func (r *Resolver) Resolve(ctx context.Context, addr string) domain.Resolution {
	addr = strings.TrimSpace(addr)

	if !ValidAddress(addr) {
		return domain.Resolution{Address: addr, Status: domain.ResolutionIndeterminate}
	}

	if user, ok := r.cached(addr); ok {
		return domain.Resolution{Address: addr, Status: domain.ResolutionResolved, Recipient: user}
	}

	return r.find(ctx, addr)
}

func (r *Resolver) find(ctx context.Context, addr string) domain.Resolution {
	res := domain.Resolution{Address: addr}

	user, err := r.backend.FindByAddress(ctx, addr)
	switch {
	case err == nil:
		r.resolved.Set(addr, user, cache.DefaultExpiration)

		res.Status = domain.ResolutionResolved
		res.Recipient = user
	case errors.Is(err, domain.ErrRecipientNotFound):
		res.Status = domain.ResolutionNotFound
	default:
		r.logger.Warn().Err(err).Str("address", addr).Msg("recipient lookup")

		res.Status = domain.ResolutionNotFound
	}

	return res
}

func (r *Resolver) cached(addr string) (domain.User, bool) {
	v, ok := r.resolved.Get(addr)
	if !ok {
		return domain.User{}, false
	}

	user, ok := v.(domain.User)

	return user, ok
}

func (r *Resolver) publishLocked(res domain.Resolution) {
	r.current = res

	for _, fn := range r.subscribers {
		fn(res)
	}
}

// Close stops pending lookups. Later inputs are ignored.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.closed = true

	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	r.cancel()
}
