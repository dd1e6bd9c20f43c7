package ros

import (
	"github.com/pkg/errors"
)

const (
	maxUint32          = int64(^uint32(0))
	secondInNanosecond = 1000000000
)

// ErrTemporalRange is returned for times and durations that do not fit
// the unsigned {sec, nsec} wire representation.
var ErrTemporalRange = errors.New("time is out of range")

func normalizeTemporal(sec int64, nsec int64) (uint32, uint32, error) {
	sec += nsec / secondInNanosecond
	nsec %= secondInNanosecond
	if nsec < 0 {
		sec--
		nsec += secondInNanosecond
	}
	if sec < 0 || sec > maxUint32 {
		return 0, 0, errors.Wrapf(ErrTemporalRange, "%d s", sec)
	}
	return uint32(sec), uint32(nsec), nil
}

func mustNormalizeTemporal(sec int64, nsec int64) (uint32, uint32) {
	s, ns, err := normalizeTemporal(sec, nsec)
	if err != nil {
		panic(err)
	}
	return s, ns
}

func cmpUint64(lhs, rhs uint64) int {
	switch {
	case lhs > rhs:
		return 1
	case lhs < rhs:
		return -1
	}
	return 0
}

// temporal is the {sec, nsec} pair shared by Time and Duration.
type temporal struct {
	Sec  uint32
	NSec uint32
}

//IsZero reports whether both sec and nsec are zero
func (t *temporal) IsZero() bool {
	return t.Sec == 0 && t.NSec == 0
}

//ToSec returns the value in seconds
func (t *temporal) ToSec() float64 {
	return float64(t.Sec) + float64(t.NSec)*1e-9
}

//ToNSec returns the value in nanoseconds
func (t *temporal) ToNSec() uint64 {
	return uint64(t.Sec)*secondInNanosecond + uint64(t.NSec)
}

//FromSec sets the value from seconds
func (t *temporal) FromSec(sec float64) {
	t.FromNSec(uint64(sec * 1e9))
}

//FromNSec sets the value from nanoseconds
func (t *temporal) FromNSec(nsec uint64) {
	t.Sec, t.NSec = mustNormalizeTemporal(0, int64(nsec))
}
