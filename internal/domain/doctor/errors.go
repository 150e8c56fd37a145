package doctor

import "errors"

var (
	ErrNotFound          = errors.New("doctor not found")
	ErrSpecialtyNotFound = errors.New("specialty not found")
)
