// Package window implements the distributed fixed-window counter protocol
// against Redis.
//
// # Window semantics
//
// A partition's counter lives under ratelimit:{<partition>} with a TTL equal
// to the window length, anchored at the first increment of the window. The
// increment is a single MULTI/EXEC batch (SET temp, RENAMENX temp to primary,
// INCR primary, TTL primary) so that concurrent first increments for the same
// partition neither lose counts nor double-initialize the expiry. Redis has no
// "increment and set expiry only if newly created" primitive; the batch is the
// substitute.
//
// # What this package must NOT do
//
//   - Decide allow/block policy (that lives in the root package).
//   - Retry, block, or apply fail-open/fail-closed behavior on store errors.
//   - Be imported outside the rategate module.
package window
