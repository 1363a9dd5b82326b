// Package session drives a chunked upload session on the service: opening it,
// finalizing it once every chunk is in, and polling until the service reports
// a terminal status.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardrive/turbo-go/upload/network"
	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
)

var (
	// ErrUnderfunded means the payer cannot cover the upload. Polling again will
	// not change that.
	ErrUnderfunded = errors.New("insufficient balance to pay for the upload")
	// ErrFinalizeTimeout means the session did not reach a terminal status
	// before the finalize deadline.
	ErrFinalizeTimeout = errors.New("timed out waiting for the upload to finalize")
)

const (
	defaultFinalizeRetries   = 2
	defaultFinalizeRetryWait = 2 * time.Second
)

// API is the part of the service the lifecycle talks to.
type API interface {
	OpenSession(ctx context.Context, token string, chunkByteCount int64) (network.OpenSessionResponse, error)
	Finalize(ctx context.Context, token, sessionID string, paidBy []string) error
	Status(ctx context.Context, token, sessionID string) (network.StatusResponse, error)
}

// State of a Session as seen by the client.
type State string

const (
	StateUnopened    State = "UNOPENED"
	StateOpen        State = "OPEN"
	StateFinalizing  State = "FINALIZING"
	StateFinalized   State = "FINALIZED"
	StateUnderfunded State = "UNDERFUNDED"
	StateTimedOut    State = "TIMED_OUT"
)

// Session identifies an upload session on the service. The id is assigned by
// the service in Open and never changes.
type Session struct {
	Token          string
	ID             string
	ChunkByteCount int64
	state          State
}

// State ...
func (s *Session) State() State {
	if s.state == "" {
		return StateUnopened
	}
	return s.state
}

// FinalizeParams ...
type FinalizeParams struct {
	PayloadSize int64
	PaidBy      []string
	// MaxWait replaces DefaultDeadline(PayloadSize) when non-nil.
	MaxWait *time.Duration
}

// Lifecycle opens and finalizes sessions.
type Lifecycle struct {
	api               API
	clock             Clock
	logger            log.Logger
	finalizeRetries   uint
	finalizeRetryWait time.Duration
}

// NewLifecycle creates a Lifecycle. A nil clock means RealClock().
func NewLifecycle(api API, clock Clock, logger log.Logger) *Lifecycle {
	if clock == nil {
		clock = RealClock()
	}
	return &Lifecycle{
		api:               api,
		clock:             clock,
		logger:            logger,
		finalizeRetries:   defaultFinalizeRetries,
		finalizeRetryWait: defaultFinalizeRetryWait,
	}
}

// SetFinalizeRetry configures how often a transiently failing finalize call is
// re-issued and how long to wait in between.
func (l *Lifecycle) SetFinalizeRetry(retries uint, wait time.Duration) {
	l.finalizeRetries = retries
	l.finalizeRetryWait = wait
}

// Open creates a new session for chunks of chunkByteCount bytes.
func (l *Lifecycle) Open(ctx context.Context, token string, chunkByteCount int64) (*Session, error) {
	resp, err := l.api.OpenSession(ctx, token, chunkByteCount)
	if err != nil {
		return nil, fmt.Errorf("open upload session: %w", err)
	}

	if resp.ChunkSize != 0 && resp.ChunkSize != chunkByteCount {
		l.logger.Warnf("Service reported chunk size %d for session %s, continuing with %d", resp.ChunkSize, resp.ID, chunkByteCount)
	}
	l.logger.Debugf("Upload session: %s", resp.ID)

	return &Session{
		Token:          token,
		ID:             resp.ID,
		ChunkByteCount: chunkByteCount,
		state:          StateOpen,
	}, nil
}

// FinalizeAndAwait finalizes the session and polls its status until it is
// finalized, underfunded, or the deadline passes. Errors from the status
// endpoint abort the wait.
func (l *Lifecycle) FinalizeAndAwait(ctx context.Context, s *Session, params FinalizeParams) (network.Receipt, error) {
	if s.State() != StateOpen {
		return network.Receipt{}, fmt.Errorf("session %s is %s, not %s", s.ID, s.State(), StateOpen)
	}

	if err := l.finalize(ctx, s, params.PaidBy); err != nil {
		return network.Receipt{}, fmt.Errorf("finalize upload session %s: %w", s.ID, err)
	}
	s.state = StateFinalizing

	interval := PollInterval(params.PayloadSize)
	maxWait := DefaultDeadline(params.PayloadSize)
	if params.MaxWait != nil {
		maxWait = *params.MaxWait
	}
	deadline := l.clock.Now().Add(maxWait)

	l.logger.Debugf("Waiting for session %s to finalize (%s payload, poll every %s, deadline %s)",
		s.ID, units.HumanSizeWithPrecision(float64(params.PayloadSize), 3), interval, maxWait)

	for attempt := 1; ; attempt++ {
		status, err := l.api.Status(ctx, s.Token, s.ID)
		if err != nil {
			return network.Receipt{}, fmt.Errorf("get status of upload session %s: %w", s.ID, err)
		}
		l.logger.Debugf("Session %s status (poll %d): %s", s.ID, attempt, status.Status)

		switch status.Status {
		case network.StatusFinalized:
			if status.Receipt != nil {
				s.state = StateFinalized
				return *status.Receipt, nil
			}
			l.logger.Warnf("Session %s is finalized but has no receipt yet", s.ID)
		case network.StatusUnderfunded:
			s.state = StateUnderfunded
			return network.Receipt{}, fmt.Errorf("upload session %s: %w", s.ID, ErrUnderfunded)
		}

		remaining := deadline.Sub(l.clock.Now())
		if remaining <= 0 {
			s.state = StateTimedOut
			return network.Receipt{}, fmt.Errorf("upload session %s after %s: %w", s.ID, maxWait, ErrFinalizeTimeout)
		}

		select {
		case <-ctx.Done():
			return network.Receipt{}, fmt.Errorf("waiting for upload session %s: %w", s.ID, ctx.Err())
		case <-l.clock.After(min(interval, remaining)):
		}
	}
}

func (l *Lifecycle) finalize(ctx context.Context, s *Session, paidBy []string) error {
	return retry.Times(l.finalizeRetries).Wait(l.finalizeRetryWait).TryWithAbort(func(attempt uint) (error, bool) {
		err := l.api.Finalize(ctx, s.Token, s.ID, paidBy)
		if err == nil {
			return nil, false
		}
		if ctx.Err() != nil || !network.IsTransient(err) {
			return err, true
		}
		l.logger.Warnf("Finalize attempt %d of session %s failed: %s", attempt+1, s.ID, err)
		return err, false
	})
}
