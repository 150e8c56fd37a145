package appointment

import "errors"

var (
	ErrNotFound                = errors.New("appointment not found")
	ErrSlotTaken               = errors.New("the selected time slot is no longer available")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrDateInPast              = errors.New("cannot book an appointment on a past date")
	ErrSlotOutsideSchedule     = errors.New("the selected time is outside the doctor's working hours")
	ErrCancellationNotice      = errors.New("the cancellation notice window has passed")
)
