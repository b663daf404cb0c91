package accounts

import (
	"fmt"

	goJobs "github.com/MrEthical07/goJobs"
)

// ErrInvalidRegistration reports a missing name or an unusable email address.
var ErrInvalidRegistration = fmt.Errorf("%w: name and a valid email are required", goJobs.ErrAccountInvalid)
