package rategate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a parsed "N/unit" rate string: at most Limit qualifying events per
// Window.
type Rate struct {
	Limit  int64
	Window time.Duration
}

var rateUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRate parses a rate string of the form "N/unit", with unit one of
// second, minute, hour, or day. N must be > 0.
func ParseRate(s string) (Rate, error) {
	value, unit, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("rate %q must be of the form N/unit", s)
	}

	limit, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return Rate{}, fmt.Errorf("rate %q has a non-integer limit", s)
	}
	if limit <= 0 {
		return Rate{}, fmt.Errorf("rate %q must have a limit > 0", s)
	}

	windowLen, ok := rateUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return Rate{}, fmt.Errorf("rate %q unit must be second, minute, hour, or day", s)
	}

	return Rate{Limit: limit, Window: windowLen}, nil
}

func (r Rate) String() string {
	return fmt.Sprintf("%d per %s", r.Limit, r.Window)
}
