package ros

import (
	"time"
)

//Duration is a non-negative ROS duration
type Duration struct {
	temporal
}

//NewDuration creates a Duration from {sec,nsec}
func NewDuration(sec uint32, nsec uint32) Duration {
	s, ns := mustNormalizeTemporal(int64(sec), int64(nsec))
	return Duration{temporal{s, ns}}
}

//DurationFromGo converts d; negative durations become zero
func DurationFromGo(d time.Duration) Duration {
	var result Duration
	if d > 0 {
		result.FromNSec(uint64(d))
	}
	return result
}

//Go converts d to a time.Duration
func (d Duration) Go() time.Duration {
	return time.Duration(d.ToNSec())
}

//Add returns the sum of two durations
func (d Duration) Add(other Duration) Duration {
	sec, nsec := mustNormalizeTemporal(int64(d.Sec)+int64(other.Sec),
		int64(d.NSec)+int64(other.NSec))
	return Duration{temporal{sec, nsec}}
}

//Sub subtracts other from d. It panics when the result would be negative
func (d Duration) Sub(other Duration) Duration {
	sec, nsec := mustNormalizeTemporal(int64(d.Sec)-int64(other.Sec),
		int64(d.NSec)-int64(other.NSec))
	return Duration{temporal{sec, nsec}}
}

//Cmp compares two durations
func (d Duration) Cmp(other Duration) int {
	return cmpUint64(d.ToNSec(), other.ToNSec())
}

//Sleep pauses the calling goroutine for d
func (d Duration) Sleep() {
	if !d.IsZero() {
		time.Sleep(d.Go())
	}
}
