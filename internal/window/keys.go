package window

const (
	primaryPrefix = "ratelimit:"
	tempPrefix    = "ratelimittemp:"
)

// PrimaryKey returns the store key holding the running count for a partition.
// The partition is brace-wrapped inside a fixed prefix so no partition value
// can collide with (or forge) another partition's key. The braces double as a
// Redis Cluster hash tag: primary and temp key hash to the same slot, which
// RENAMENX inside MULTI/EXEC requires.
func PrimaryKey(partition string) string {
	return primaryPrefix + "{" + partition + "}"
}

// TempKey returns the transient key used only while initializing the first
// increment of a window. It is never read by callers.
func TempKey(partition string) string {
	return tempPrefix + "{" + partition + "}"
}
