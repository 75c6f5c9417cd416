// Package rategate implements a fixed-window rate-limiting gate backed by a
// shared Redis store, so one limit is enforced consistently across every
// process and machine serving the same traffic.
//
// Two usage variants are supported: counting every incoming request and
// blocking once the threshold is exceeded ([Gate.Allow] + [Gate.Record], or
// the middleware package), and counting only failures of a guarded operation
// that match a configured predicate ([Gate.Guard]).
//
// The package is designed for concurrent server workloads: Gate methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. The gate itself holds no cross-request state; all
// coordination happens through the atomicity of a single Redis MULTI/EXEC
// batch per increment, with no locks anywhere.
//
// # Architecture boundaries
//
// rategate is the public surface. It exposes [Gate], [Builder], [Config],
// and value types (Decision, Rate, MetricsSnapshot, AuditEvent). The
// windowed-counter protocol lives under internal/window and is never
// exported. HTTP adapters live in the middleware sub-package.
//
// # Failure policy
//
// Store transport failures fail open: the request is allowed and one log
// line is emitted. Availability of the protected pipeline must not depend
// on the limiter's backing store. An
// optional in-process fallback cap ([Builder.WithLocalFallback]) bounds the
// exposure while the store is down. The raw operations [Gate.ShouldBlock]
// and [Gate.Increment] return store errors unfiltered for callers that want
// fail-closed behavior instead.
//
// # What this package must NOT do
//
//   - Retry store commands or block a request on anything but the single
//     in-flight store call.
//   - Cache counter values in process.
//   - Delete counters explicitly (expiry is store-driven).
package rategate
