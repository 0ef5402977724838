// Package requestservice manages payment requests and the pending request
// counter shown next to the navigation.
package requestservice

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-petr/convergex-pay/internal/apiclient"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/internal/poller"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultPollInterval = 30 * time.Second

// Backend provides the request endpoints.
//
//go:generate mockgen -source service.go -destination service_mock.go -package requestservice
type Backend interface {
	IncomingRequests(ctx context.Context) ([]domain.PaymentRequest, error)
	OutgoingRequests(ctx context.Context) ([]domain.PaymentRequest, error)
	CreateRequest(ctx context.Context, toUPIID string, amount decimal.Decimal) (domain.PaymentRequest, error)
	AcceptRequest(ctx context.Context, id string) (string, error)
	RejectRequest(ctx context.Context, id string) (string, error)
	NotificationCount(ctx context.Context) (int, error)
}

// Option configures a Service.
type Option func(*Service)

// WithPollInterval sets how often the pending count is polled.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		s.interval = d
	}
}

// WithLogger sets the logger of the background poll.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service facilitates payment requests.
type Service struct {
	backend  Backend
	interval time.Duration
	logger   zerolog.Logger
	poller   *poller.Poller

	mu      sync.RWMutex
	pending int
}

// New returns a request service.
func New(b Backend, opts ...Option) *Service {
	s := &Service{
		backend:  b,
		interval: defaultPollInterval,
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.poller = poller.New("notification-count", s.interval, s.RefreshPendingCount, s.logger)

	return s
}

// Incoming lists requests waiting for the user.
func (s *Service) Incoming(ctx context.Context) ([]domain.PaymentRequest, error) {
	return s.backend.IncomingRequests(ctx)
}

// Outgoing lists requests the user sent.
func (s *Service) Outgoing(ctx context.Context) ([]domain.PaymentRequest, error) {
	return s.backend.OutgoingRequests(ctx)
}

// Create asks the owner of toUPIID to pay amount.
func (s *Service) Create(ctx context.Context, toUPIID string, amount decimal.Decimal) (domain.PaymentRequest, error) {
	toUPIID = strings.TrimSpace(toUPIID)
	if toUPIID == "" {
		return domain.PaymentRequest{}, domain.ErrInvalidRecipient
	}

	if !amount.IsPositive() {
		return domain.PaymentRequest{}, domain.ErrInvalidAmount
	}

	return s.backend.CreateRequest(ctx, toUPIID, amount)
}

// Accept pays an incoming request and refreshes the pending count.
func (s *Service) Accept(ctx context.Context, id string) (string, error) {
	return s.resolve(ctx, id, s.backend.AcceptRequest)
}

// Reject declines an incoming request and refreshes the pending count.
func (s *Service) Reject(ctx context.Context, id string) (string, error) {
	return s.resolve(ctx, id, s.backend.RejectRequest)
}

func (s *Service) resolve(ctx context.Context, id string, fn func(context.Context, string) (string, error)) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", domain.ErrInvalidRequestID
	}

	msg, err := fn(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.RefreshPendingCount(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("refresh pending count")
	}

	return msg, nil
}

// PendingCount returns the last polled number of pending incoming requests.
func (s *Service) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pending
}

// RefreshPendingCount polls the counter. The call is silent; on failure the
// last value is kept.
func (s *Service) RefreshPendingCount(ctx context.Context) error {
	count, err := s.backend.NotificationCount(apiclient.Silent(ctx))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = count

	return nil
}

// StartPolling polls the counter now and then on every interval.
func (s *Service) StartPolling(ctx context.Context) {
	s.poller.Start(ctx)
}

// RunPolling polls the counter until ctx is done.
func (s *Service) RunPolling(ctx context.Context) error {
	return s.poller.Run(ctx)
}

// Stop stops polling.
func (s *Service) Stop() {
	s.poller.Stop()
}
