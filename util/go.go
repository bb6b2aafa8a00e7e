package util

import "runtime"

// GoroutineID parses the current goroutine's id out of its stack header.
// Cheap enough for registry lookups, not for hot paths.
func GoroutineID() int {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// the header is "goroutine <id> [...]"
	id := 0
	for _, c := range buf[len("goroutine "):n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int(c-'0')
	}
	return id
}
