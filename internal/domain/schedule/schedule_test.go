package schedule

import (
	"testing"

	"github.com/clinicsync/clinicsync/internal/domain"
)

func tod(h, m int) *domain.TimeOfDay {
	t := domain.NewTimeOfDay(h, m)
	return &t
}

func TestBlocksWholeDay(t *testing.T) {
	cases := []struct {
		name string
		e    Exception
		want bool
	}{
		{"day off", Exception{Type: ExceptionDayOff}, true},
		{"day off with times", Exception{Type: ExceptionDayOff, StartTime: tod(9, 0), EndTime: tod(12, 0)}, true},
		{"busy without times", Exception{Type: ExceptionBusy}, true},
		{"emergency without times", Exception{Type: ExceptionEmergency}, true},
		{"busy with times", Exception{Type: ExceptionBusy, StartTime: tod(9, 0), EndTime: tod(12, 0)}, false},
		{"busy missing end", Exception{Type: ExceptionBusy, StartTime: tod(9, 0)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.e.BlocksWholeDay(); got != tc.want {
				t.Errorf("BlocksWholeDay = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBlocksSlot(t *testing.T) {
	busy := Exception{Type: ExceptionBusy, StartTime: tod(10, 0), EndTime: tod(12, 0)}

	cases := []struct {
		name       string
		start, end domain.TimeOfDay
		want       bool
	}{
		{"inside", domain.NewTimeOfDay(10, 30), domain.NewTimeOfDay(11, 0), true},
		{"straddles start", domain.NewTimeOfDay(9, 45), domain.NewTimeOfDay(10, 15), true},
		{"ends at block start", domain.NewTimeOfDay(9, 30), domain.NewTimeOfDay(10, 0), false},
		{"starts at block end", domain.NewTimeOfDay(12, 0), domain.NewTimeOfDay(12, 30), false},
		{"disjoint", domain.NewTimeOfDay(14, 0), domain.NewTimeOfDay(14, 30), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := busy.BlocksSlot(tc.start, tc.end); got != tc.want {
				t.Errorf("BlocksSlot(%v,%v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestExceptionTypeIsValid(t *testing.T) {
	for _, v := range []ExceptionType{ExceptionDayOff, ExceptionBusy, ExceptionEmergency} {
		if !v.IsValid() {
			t.Errorf("%q reported invalid", v)
		}
	}
	if ExceptionType("sick").IsValid() {
		t.Error("unknown type reported valid")
	}
}
