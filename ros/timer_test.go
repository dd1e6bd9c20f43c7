package ros

import (
	"sync"
	"testing"
	"time"
)

func TestTimerRunsThroughJobQueue(t *testing.T) {
	jobChan := make(chan func(), 10)
	done := make(chan struct{})
	var events []TimerEvent
	timer := newDefaultTimer(10*time.Millisecond, func(e TimerEvent) {
		events = append(events, e)
	}, jobChan)

	var wg sync.WaitGroup
	wg.Add(1)
	go timer.start(&wg, done)

	for len(events) < 3 {
		select {
		case job := <-jobChan:
			job()
		case <-time.After(time.Second):
			t.Fatal("timer did not fire")
		}
	}
	timer.Stop()
	wg.Wait()

	if events[0].LastDuration != 0 {
		t.Error(events[0].LastDuration)
	}
	for _, e := range events[1:] {
		if e.LastDuration <= 0 {
			t.Error(e.LastDuration)
		}
		if e.Real.Before(e.Expected) {
			t.Errorf("fired early: %v < %v", e.Real, e.Expected)
		}
	}
}

func TestStoppedTimerSkipsQueuedCallback(t *testing.T) {
	jobChan := make(chan func(), 10)
	done := make(chan struct{})
	called := false
	timer := newDefaultTimer(time.Millisecond, func(TimerEvent) { called = true }, jobChan)

	var wg sync.WaitGroup
	wg.Add(1)
	go timer.start(&wg, done)

	var job func()
	select {
	case job = <-jobChan:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	timer.Stop()
	timer.Stop()
	job()
	if called {
		t.Error("callback ran after Stop")
	}
	close(done)
	wg.Wait()
}
