package ros

import (
	"sync"
	"time"
)

// defaultTimer fires its callback through the node's job queue so that it
// never runs concurrently with subscriber or service callbacks.
type defaultTimer struct {
	rate     Rate
	callback func(TimerEvent)
	jobChan  chan func()
	quitChan chan struct{}
	stopOnce sync.Once
}

func newDefaultTimer(period time.Duration, callback func(TimerEvent), jobChan chan func()) *defaultTimer {
	return &defaultTimer{
		rate:     CycleTime(DurationFromGo(period)),
		callback: callback,
		jobChan:  jobChan,
		quitChan: make(chan struct{}),
	}
}

func (t *defaultTimer) start(wg *sync.WaitGroup, done <-chan struct{}) {
	defer wg.Done()

	var lastReal time.Time
	wait := time.NewTimer(0)
	defer wait.Stop()
	for {
		expected := t.rate.deadline()
		wait.Reset(t.rate.remaining(Now()).Go())
		select {
		case <-wait.C:
		case <-t.quitChan:
			return
		case <-done:
			return
		}

		now := Now()
		t.rate.advance(now)
		event := TimerEvent{Expected: expected.Go(), Real: now.Go()}
		if !lastReal.IsZero() {
			event.LastDuration = event.Real.Sub(lastReal)
		}
		lastReal = event.Real

		job := func() {
			select {
			case <-t.quitChan:
			default:
				t.callback(event)
			}
		}
		select {
		case t.jobChan <- job:
		case <-t.quitChan:
			return
		case <-done:
			return
		}
	}
}

func (t *defaultTimer) Stop() {
	t.stopOnce.Do(func() { close(t.quitChan) })
}
