package airspace

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"airport-sim/pkg/types"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(100 * time.Microsecond)
	}
}

func TestRunwayGrantsInFIFOOrder(t *testing.T) {
	r := NewRunway(DefaultLayout().Runway)
	const n = 8

	var mu sync.Mutex
	var order []int
	admitted, maxAdmitted := 0, 0
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := types.AircraftID(fmt.Sprintf("AC%d", i))
			if err := r.RequestEntry(context.Background(), id); err != nil {
				t.Errorf("RequestEntry %s: %v", id, err)
				return
			}
			if h := r.Holder(); h != id {
				t.Errorf("%s admitted but holder is %q", id, h)
			}
			mu.Lock()
			order = append(order, i)
			admitted++
			if admitted > maxAdmitted {
				maxAdmitted = admitted
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			admitted--
			mu.Unlock()
			if !r.Vacate(id) {
				t.Errorf("%s could not vacate", id)
			}
		}(i)
		// Queue requests one at a time so the expected order is known.
		waitFor(t, "queued request", func() bool { return r.QueueLength() == i+1 })
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx, 100*time.Microsecond)
	wg.Wait()

	if maxAdmitted != 1 {
		t.Errorf("%d aircraft were admitted at the same time", maxAdmitted)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("grant order %v, want 0..%d", order, n-1)
		}
	}
	if r.IsBlocked() || r.QueueLength() != 0 {
		t.Errorf("runway left blocked=%v queue=%d", r.IsBlocked(), r.QueueLength())
	}
}

func TestRunwaySecondWaitsForFirstToClear(t *testing.T) {
	r := NewRunway(DefaultLayout().Runway)

	var mu sync.Mutex
	var events []string
	record := func(e string) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}

	firstGranted := make(chan struct{})
	secondGranted := make(chan struct{})
	go func() {
		if err := r.RequestEntry(context.Background(), "FIRST"); err == nil {
			record("grant FIRST")
			close(firstGranted)
		}
	}()
	waitFor(t, "first request", func() bool { return r.QueueLength() == 1 })
	go func() {
		if err := r.RequestEntry(context.Background(), "SECOND"); err == nil {
			record("grant SECOND")
			close(secondGranted)
		}
	}()
	waitFor(t, "second request", func() bool { return r.QueueLength() == 2 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx, 100*time.Microsecond)

	<-firstGranted
	select {
	case <-secondGranted:
		t.Fatalf("second aircraft admitted while the first holds the runway")
	case <-time.After(20 * time.Millisecond):
	}
	if r.Holder() != "FIRST" || !r.IsBlocked() {
		t.Fatalf("holder %q blocked %v", r.Holder(), r.IsBlocked())
	}

	record("vacate FIRST")
	r.Vacate("FIRST")

	select {
	case <-secondGranted:
	case <-time.After(2 * time.Second):
		t.Fatalf("second aircraft never admitted")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"grant FIRST", "vacate FIRST", "grant SECOND"}
	if len(events) != len(want) {
		t.Fatalf("events %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events %v, want %v", events, want)
			break
		}
	}
}

func TestRunwayBlockedFlag(t *testing.T) {
	r := NewRunway(DefaultLayout().Runway)
	if r.Admit() {
		t.Errorf("admitted from an empty queue")
	}

	r.SetBlocked(true)
	done := make(chan error, 1)
	go func() { done <- r.RequestEntry(context.Background(), "AC1") }()
	waitFor(t, "queued request", func() bool { return r.QueueLength() == 1 })

	if r.Admit() {
		t.Errorf("admitted while blocked")
	}
	r.SetBlocked(false)
	if !r.Admit() {
		t.Errorf("not admitted once free")
	}
	if err := <-done; err != nil {
		t.Errorf("RequestEntry: %v", err)
	}
	if !r.IsBlocked() || r.Holder() != "AC1" {
		t.Errorf("blocked %v holder %q", r.IsBlocked(), r.Holder())
	}
}

func TestRunwayVacateRequiresHolder(t *testing.T) {
	r := NewRunway(DefaultLayout().Runway)
	go r.RequestEntry(context.Background(), "AC1")
	waitFor(t, "queued request", func() bool { return r.QueueLength() == 1 })
	r.Admit()

	if r.Vacate("AC2") {
		t.Errorf("a non-holder vacated the runway")
	}
	if !r.IsBlocked() {
		t.Errorf("runway freed by a non-holder")
	}
	if !r.Vacate("AC1") || r.IsBlocked() {
		t.Errorf("holder could not vacate")
	}
	if r.Vacate("AC1") {
		t.Errorf("vacated twice")
	}
}

func TestRunwayRequestWithdrawnOnCancel(t *testing.T) {
	r := NewRunway(DefaultLayout().Runway)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.RequestEntry(ctx, "AC1") }()
	waitFor(t, "queued request", func() bool { return r.QueueLength() == 1 })

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("RequestEntry returned %v, want context.Canceled", err)
	}
	if r.QueueLength() != 0 {
		t.Errorf("cancelled request still queued")
	}
	if r.Admit() || r.IsBlocked() {
		t.Errorf("withdrawn request was admitted")
	}
}
