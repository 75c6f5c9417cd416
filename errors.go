package rategate

import (
	"errors"

	"github.com/rategate/rategate/internal/window"
)

var (
	// ErrRateLimited is returned by Guard when the partition is over its
	// limit and the gate is in blocking mode.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable wraps transport-level failures of the backing
	// store. Policy-applied entry points (Allow, Record, Guard) never return
	// it; the raw ShouldBlock and Increment operations do.
	ErrStoreUnavailable = window.ErrStoreUnavailable
)
