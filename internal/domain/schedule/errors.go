package schedule

import "errors"

var (
	ErrScheduleNotFound  = errors.New("doctor has no schedule for this day")
	ErrInvalidTimeWindow = errors.New("schedule window start must be before end")
	ErrInvalidException  = errors.New("exception must carry both start and end times or neither")
)
