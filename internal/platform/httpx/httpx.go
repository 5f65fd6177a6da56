package httpx

import (
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusCoder is implemented by outbound client errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatusCode() int
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// RetryAfterDuration honors a Retry-After header when present, otherwise the
// supplied backoff capped at max.
func RetryAfterDuration(resp *http.Response, backoff, max time.Duration) time.Duration {
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				d := time.Duration(secs) * time.Second
				if d > max {
					return max
				}
				return d
			}
		}
	}
	if backoff > max {
		return max
	}
	return backoff
}

func JitterSleep(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 4))
	return d + jitter
}
