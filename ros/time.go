package ros

import (
	gotime "time"
)

//Time is a ROS timestamp: seconds and nanoseconds since the Unix epoch
type Time struct {
	temporal
}

//NewTime creates a Time from {sec,nsec}, carrying nsec overflow into sec
func NewTime(sec uint32, nsec uint32) Time {
	s, ns := mustNormalizeTemporal(int64(sec), int64(nsec))
	return Time{temporal{s, ns}}
}

//Now returns the wall-clock time
func Now() Time {
	return TimeFromGo(gotime.Now())
}

//TimeFromGo converts a time.Time to a Time
func TimeFromGo(t gotime.Time) Time {
	var result Time
	result.FromNSec(uint64(t.UnixNano()))
	return result
}

//Go converts t to a time.Time in the local zone
func (t Time) Go() gotime.Time {
	return gotime.Unix(int64(t.Sec), int64(t.NSec))
}

//Diff returns t - from. It panics when from is later than t
func (t Time) Diff(from Time) Duration {
	sec, nsec := mustNormalizeTemporal(int64(t.Sec)-int64(from.Sec),
		int64(t.NSec)-int64(from.NSec))
	return Duration{temporal{sec, nsec}}
}

//Add returns t shifted forward by d
func (t Time) Add(d Duration) Time {
	sec, nsec := mustNormalizeTemporal(int64(t.Sec)+int64(d.Sec),
		int64(t.NSec)+int64(d.NSec))
	return Time{temporal{sec, nsec}}
}

//Sub returns t shifted back by d
func (t Time) Sub(d Duration) Time {
	sec, nsec := mustNormalizeTemporal(int64(t.Sec)-int64(d.Sec),
		int64(t.NSec)-int64(d.NSec))
	return Time{temporal{sec, nsec}}
}

//Cmp returns -1, 0 or 1 as t is before, equal to or after other
func (t Time) Cmp(other Time) int {
	return cmpUint64(t.ToNSec(), other.ToNSec())
}
