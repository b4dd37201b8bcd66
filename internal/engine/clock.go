package engine

import "time"

// nowNano is the engine's default monotonic-ish nanosecond clock,
// overridable via WithClock for deterministic tests.
func nowNano() int64 { return time.Now().UnixNano() }
