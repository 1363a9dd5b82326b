package session

import (
	"context"
	"sync"
	"time"

	"github.com/ardrive/turbo-go/upload/network"
)

// fakeClock advances instantly whenever After is called and records every wait.
type fakeClock struct {
	mu      sync.Mutex
	current time.Time
	waits   []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.current = c.current.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.current
	return ch
}

func (c *fakeClock) recordedWaits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

type fakeAPI struct {
	openResp      network.OpenSessionResponse
	openErr       error
	finalizeErrs  []error
	finalizeCalls int
	statuses      []network.StatusResponse
	statusErr     error
	statusCalls   int
	paidBy        []string
}

func (a *fakeAPI) OpenSession(ctx context.Context, token string, chunkByteCount int64) (network.OpenSessionResponse, error) {
	return a.openResp, a.openErr
}

func (a *fakeAPI) Finalize(ctx context.Context, token, sessionID string, paidBy []string) error {
	a.finalizeCalls++
	a.paidBy = paidBy
	if len(a.finalizeErrs) >= a.finalizeCalls {
		return a.finalizeErrs[a.finalizeCalls-1]
	}
	return nil
}

// Status replays statuses in order and repeats the last one.
func (a *fakeAPI) Status(ctx context.Context, token, sessionID string) (network.StatusResponse, error) {
	a.statusCalls++
	if a.statusErr != nil {
		return network.StatusResponse{}, a.statusErr
	}
	if len(a.statuses) == 0 {
		return network.StatusResponse{Status: network.StatusPending}, nil
	}
	i := a.statusCalls - 1
	if i >= len(a.statuses) {
		i = len(a.statuses) - 1
	}
	return a.statuses[i], nil
}
