package ros

//Rate keeps a loop running at a fixed frequency
type Rate struct {
	actualCycleTime   Duration
	expectedCycleTime Duration
	start             Time
}

//NewRate creates a Rate of frequency Hz
func NewRate(frequency float64) Rate {
	var expectedCycleTime Duration
	expectedCycleTime.FromSec(1.0 / frequency)
	return CycleTime(expectedCycleTime)
}

//CycleTime creates a Rate with a fixed cycle length d
func CycleTime(d Duration) Rate {
	return Rate{expectedCycleTime: d, start: Now()}
}

//CycleTime is the measured length of the last cycle
func (r *Rate) CycleTime() Duration {
	return r.actualCycleTime
}

//ExpectedCycleTime returns the cycle length the Rate aims for
func (r *Rate) ExpectedCycleTime() Duration {
	return r.expectedCycleTime
}

//Reset restarts the current cycle now
func (r *Rate) Reset() {
	r.actualCycleTime = Duration{}
	r.start = Now()
}

//Sleep blocks until the end of the current cycle
func (r *Rate) Sleep() {
	r.remaining(Now()).Sleep()
	r.advance(Now())
}

func (r *Rate) deadline() Time {
	return r.start.Add(r.expectedCycleTime)
}

func (r *Rate) remaining(now Time) Duration {
	deadline := r.deadline()
	if deadline.Cmp(now) <= 0 {
		return Duration{}
	}
	return deadline.Diff(now)
}

// advance starts the next cycle. A loop that fell more than a full cycle
// behind restarts its schedule at now instead of bursting to catch up.
func (r *Rate) advance(now Time) {
	if now.Cmp(r.start) >= 0 {
		r.actualCycleTime = now.Diff(r.start)
	} else {
		r.actualCycleTime = Duration{}
	}
	r.start = r.deadline()
	if now.Cmp(r.deadline()) > 0 {
		r.start = now
	}
}
