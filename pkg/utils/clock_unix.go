// pkg/utils/clock_unix.go

package utils

import "time"

// Now is the clock used for timestamps, tests may replace it.
var Now = time.Now
