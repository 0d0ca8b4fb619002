// ABOUTME: Derives a domain cool-down from rate-limit response headers
// ABOUTME: Honors Retry-After, RateLimit-Reset and X-RateLimit-Reset in that order

package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MaxCoolDownSeconds caps every derived cool-down
const MaxCoolDownSeconds = 3600

// GetRateLimitDuration returns the cool-down in seconds announced by headers,
// or fallbackSeconds when none of them is usable. The result is always within
// [0, MaxCoolDownSeconds].
func GetRateLimitDuration(headers http.Header, fallbackSeconds int) int {
	return getRateLimitDurationAt(headers, fallbackSeconds, time.Now())
}

func getRateLimitDurationAt(headers http.Header, fallbackSeconds int, now time.Time) int {
	if v := headerValue(headers, "Retry-After"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			// a negative delay reads as a moment already past
			if n < 0 {
				return 0
			}
			return clamp(n)
		}
		if at, err := http.ParseTime(v); err == nil {
			return clamp(secondsUntil(at, now))
		}
	}

	if v := headerValue(headers, "RateLimit-Reset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return clamp(n)
		}
	}

	if v := headerValue(headers, "X-RateLimit-Reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			delta := ts - now.Unix()
			if delta < 0 {
				delta = 0
			}
			if delta > MaxCoolDownSeconds {
				delta = MaxCoolDownSeconds
			}
			return int(delta)
		}
	}

	return clamp(fallbackSeconds)
}

// headerValue looks a header up case-insensitively, including keys that were
// stored without canonicalization
func headerValue(headers http.Header, name string) string {
	if v := strings.TrimSpace(headers.Get(name)); v != "" {
		return v
	}
	for key, values := range headers {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

func secondsUntil(at, now time.Time) int {
	secs := math.Ceil(at.Sub(now).Seconds())
	if secs <= 0 {
		return 0
	}
	if secs > MaxCoolDownSeconds {
		return MaxCoolDownSeconds
	}
	return int(secs)
}

func clamp(seconds int) int {
	if seconds < 0 {
		return 0
	}
	if seconds > MaxCoolDownSeconds {
		return MaxCoolDownSeconds
	}
	return seconds
}
