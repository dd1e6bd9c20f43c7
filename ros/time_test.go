package ros

import (
	"testing"
	"time"
)

func TestNormalizeTemporal(t *testing.T) {
	var tests = []struct {
		sec, nsec        int64
		expSec, expNSec  uint32
		expectOutOfRange bool
	}{
		{0, 0, 0, 0, false},
		{0, 1000000000, 1, 0, false},
		{1, 2500000000, 3, 500000000, false},
		{2, -1, 1, 999999999, false},
		{2, -1000000000, 1, 0, false},
		{0, -1, 0, 0, true},
		{maxUint32 + 1, 0, 0, 0, true},
	}
	for _, test := range tests {
		sec, nsec, err := normalizeTemporal(test.sec, test.nsec)
		if test.expectOutOfRange {
			if err == nil {
				t.Errorf("(%d, %d) should be out of range", test.sec, test.nsec)
			}
			continue
		}
		if err != nil {
			t.Errorf("(%d, %d): %v", test.sec, test.nsec, err)
			continue
		}
		if sec != test.expSec || nsec != test.expNSec {
			t.Errorf("(%d, %d): expected (%d, %d), got (%d, %d)", test.sec, test.nsec, test.expSec, test.expNSec, sec, nsec)
		}
	}
}

func TestTimeArithmetic(t *testing.T) {
	t1 := NewTime(10, 900000000)
	t2 := t1.Add(NewDuration(0, 200000000))
	if t2.Sec != 11 || t2.NSec != 100000000 {
		t.Error(t2)
	}
	d := t2.Diff(t1)
	if d.Sec != 0 || d.NSec != 200000000 {
		t.Error(d)
	}
	if t2.Sub(d) != t1 {
		t.Error(t2.Sub(d))
	}
	if t1.Cmp(t2) != -1 || t2.Cmp(t1) != 1 || t1.Cmp(t1) != 0 {
		t.Error("Cmp")
	}
}

func TestTimeGo(t *testing.T) {
	goTime := time.Unix(1700000000, 123456789)
	rt := TimeFromGo(goTime)
	if rt.Sec != 1700000000 || rt.NSec != 123456789 {
		t.Error(rt)
	}
	if !rt.Go().Equal(goTime) {
		t.Error(rt.Go())
	}
}
