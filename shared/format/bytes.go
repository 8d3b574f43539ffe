package format

import (
	"fmt"
	"time"
)

// Bytes formats bytes into human-readable format (KB, MB, GB, TB, etc.)
func Bytes(b int64) string {
	if b == 0 {
		return "0 B"
	}

	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}

	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.2f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// ETA formats a remaining-seconds estimate for logs. Zero means unknown.
func ETA(seconds int64) string {
	if seconds <= 0 {
		return "unknown"
	}
	return (time.Duration(seconds) * time.Second).String()
}
