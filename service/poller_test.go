package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"seatview/model"
)

type fetcherFunc func(ctx context.Context) (model.Seats, error)

func (f fetcherFunc) GetSeats(ctx context.Context) (model.Seats, error) {
	return f(ctx)
}

func receive(t *testing.T, results <-chan PollResult) PollResult {
	t.Helper()
	select {
	case res, ok := <-results:
		if !ok {
			t.Fatal("results channel closed unexpectedly")
		}
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for poll result")
	}
	return PollResult{}
}

func TestPoller_FetchesImmediately(t *testing.T) {
	poller := NewPoller(fetcherFunc(func(ctx context.Context) (model.Seats, error) {
		return model.Seats{model.NewSeat("A1", "available")}, nil
	}), time.Hour)
	defer poller.Stop()

	res := receive(t, poller.Start(context.Background()))
	if res.Err != nil {
		t.Fatalf("expected nil error, got %v", res.Err)
	}
	if res.Seq != 1 || len(res.Seats) != 1 {
		t.Fatalf("unexpected first result: %+v", res)
	}
}

func TestPoller_KeepsTickingAfterErrors(t *testing.T) {
	var calls int32
	poller := NewPoller(fetcherFunc(func(ctx context.Context) (model.Seats, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, &DecodeError{Endpoint: "/seats", Err: errors.New("bad json")}
		}
		return model.Seats{}, nil
	}), 10*time.Millisecond)
	defer poller.Stop()

	results := poller.Start(context.Background())
	first := receive(t, results)
	if first.Err == nil {
		t.Fatal("expected first poll to fail")
	}
	second := receive(t, results)
	if second.Err != nil {
		t.Fatalf("expected next tick to succeed, got %v", second.Err)
	}
	if second.Seq <= first.Seq {
		t.Fatalf("expected increasing sequence, got %d then %d", first.Seq, second.Seq)
	}
}

func TestPoller_RefreshFetchesOutOfSchedule(t *testing.T) {
	var calls int32
	poller := NewPoller(fetcherFunc(func(ctx context.Context) (model.Seats, error) {
		atomic.AddInt32(&calls, 1)
		return model.Seats{}, nil
	}), time.Hour)
	defer poller.Stop()

	results := poller.Start(context.Background())
	receive(t, results)

	poller.Refresh()
	res := receive(t, results)
	if res.Seq != 2 {
		t.Fatalf("expected refresh to produce seq 2, got %d", res.Seq)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 fetches, got %d", got)
	}
}

func TestPoller_SlowFetchDoesNotBlockNextTick(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	poller := NewPoller(fetcherFunc(func(ctx context.Context) (model.Seats, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return model.Seats{}, nil
	}), 10*time.Millisecond)
	defer poller.Stop()

	results := poller.Start(context.Background())
	fast := receive(t, results)
	if fast.Seq < 2 {
		t.Fatalf("expected a later tick to finish first, got seq %d", fast.Seq)
	}

	close(release)
	for {
		res := receive(t, results)
		// The stale result still arrives; consumers drop it by sequence.
		if res.Seq == 1 {
			return
		}
	}
}

func TestPoller_StopClosesResultsAndIsIdempotent(t *testing.T) {
	poller := NewPoller(fetcherFunc(func(ctx context.Context) (model.Seats, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), time.Hour)

	results := poller.Start(context.Background())

	done := make(chan struct{})
	go func() {
		poller.Stop()
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	for range results {
	}
	if _, ok := <-results; ok {
		t.Fatal("expected results channel to be closed")
	}
}

func TestPoller_StopBeforeStart(t *testing.T) {
	poller := NewPoller(fetcherFunc(func(ctx context.Context) (model.Seats, error) {
		t.Error("fetch must not run")
		return nil, nil
	}), time.Hour)

	poller.Stop()
	if _, ok := <-poller.Start(context.Background()); ok {
		t.Fatal("expected a stopped poller to return a closed channel")
	}
}
