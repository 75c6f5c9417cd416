package window

import "errors"

// ErrStoreUnavailable wraps every transport-level Redis failure reported by
// this package. Callers pick the fail-open/fail-closed policy; the counter
// itself never retries.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")
