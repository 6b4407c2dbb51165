package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"seatview/model"
)

const DefaultPollInterval = 2 * time.Second

// SeatFetcher is the read side of Client used by Poller.
type SeatFetcher interface {
	GetSeats(ctx context.Context) (model.Seats, error)
}

// PollResult is the outcome of one poll cycle. Seq is assigned when the
// request starts, so a result with a lower Seq than one already applied is stale.
type PollResult struct {
	Seq   uint64
	Seats model.Seats
	Err   error
	At    time.Time
}

// Poller fetches seats immediately on Start and then on every tick until
// Stop is called or the start context is done. Fetches run independently,
// so a slow request never delays the next tick. A Poller cannot be restarted.
type Poller struct {
	fetcher  SeatFetcher
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	results chan PollResult
	stopped bool

	refresh chan struct{}
	seq     atomic.Uint64
	wg      sync.WaitGroup
}

func NewPoller(fetcher SeatFetcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		results:  make(chan PollResult, 4),
		refresh:  make(chan struct{}, 1),
	}
}

// Start begins polling and returns the results channel. Calling Start more
// than once returns the same channel.
func (p *Poller) Start(ctx context.Context) <-chan PollResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil || p.stopped {
		return p.results
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go p.loop(ctx)
	return p.results
}

// Results returns the channel Start delivers to. It is closed by Stop.
func (p *Poller) Results() <-chan PollResult {
	return p.results
}

// Refresh requests a fetch outside the regular schedule. Requests made while
// one is already pending are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Stop cancels in-flight fetches, waits for them to return and closes the
// results channel. It is safe to call more than once, and before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	close(p.results)
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx)
		case <-p.refresh:
			p.fetch(ctx)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) {
	seq := p.seq.Add(1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		seats, err := p.fetcher.GetSeats(ctx)
		result := PollResult{Seq: seq, Seats: seats, Err: err, At: time.Now()}
		select {
		case p.results <- result:
		case <-ctx.Done():
		}
	}()
}
