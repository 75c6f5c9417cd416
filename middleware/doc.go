// Package middleware exposes HTTP adapters for the rategate limiter: a
// per-request limit for plain handlers, an error-counting wrapper for
// error-returning handlers, and partition-key extractors (IP, header, JWT
// subject).
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Gate calls. It does NOT make
// rate-limit decisions itself; blocking, log-only mode, and fail-open policy
// are all applied inside [rategate.Gate].
//
// # What this package must NOT do
//
//   - Talk to Redis directly (the Gate owns all store I/O).
//   - Override the gate's rejection policy or message.
package middleware
