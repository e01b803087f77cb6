package utils

import (
	"math/rand"
	"time"
)

// RandomInt returns a uniform integer in [min, max]. Swapped bounds are
// tolerated.
func RandomInt(min, max int) int {
	if min > max {
		min, max = max, min
	}
	return rand.Intn(max-min+1) + min
}

// Jitter returns a uniform duration in [min, max] with millisecond
// granularity.
func Jitter(min, max time.Duration) time.Duration {
	return time.Duration(RandomInt(int(min/time.Millisecond), int(max/time.Millisecond))) * time.Millisecond
}
