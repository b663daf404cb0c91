package jobs

import "errors"

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrAlreadyApplied = errors.New("already applied to this job")
	ErrForbidden      = errors.New("not allowed for this account")
	ErrInvalidJob     = errors.New("invalid job posting")
	ErrJobClosed      = errors.New("job is no longer accepting applications")
)
