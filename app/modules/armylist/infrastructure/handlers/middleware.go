package armylisthandlers

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"golang.org/x/time/rate"
)

const (
	// uploaderPruneAt is the number of tracked uploaders above which idle ones are forgotten.
	uploaderPruneAt = 500
	uploaderIdle    = 10 * time.Minute
)

type uploaderBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// uploadLimits meters uploads per client host. Each host gets its own token bucket.
type uploadLimits struct {
	mu        sync.Mutex
	uploaders map[string]*uploaderBucket
	perSecond rate.Limit
	burst     int
	clock     func() time.Time
}

func newUploadLimits(perSecond float64, burst int) *uploadLimits {
	if burst < 1 {
		burst = 1
	}
	return &uploadLimits{
		uploaders: make(map[string]*uploaderBucket),
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		clock:     time.Now,
	}
}

// reserve takes one token for host. When the bucket is empty nothing is taken and the
// wait until the next token is returned.
func (u *uploadLimits) reserve(host string) (time.Duration, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.clock()
	u.forgetIdle(now)

	up, ok := u.uploaders[host]
	if !ok {
		up = &uploaderBucket{bucket: rate.NewLimiter(u.perSecond, u.burst)}
		u.uploaders[host] = up
	}
	up.lastSeen = now

	res := up.bucket.ReserveN(now, 1)
	if !res.OK() {
		return time.Duration(math.MaxInt64), false
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (u *uploadLimits) forgetIdle(now time.Time) {
	if len(u.uploaders) <= uploaderPruneAt {
		return
	}
	cutoff := now.Add(-uploaderIdle)
	for host, up := range u.uploaders {
		if up.lastSeen.Before(cutoff) {
			delete(u.uploaders, host)
		}
	}
}

func (u *uploadLimits) tracked() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploaders)
}

// throttle answers 429 with a Retry-After header once a host has spent its budget.
func throttle(limits *uploadLimits, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			wait, ok := limits.reserve(host)
			if !ok {
				logger.WarnContext(r.Context(), "Upload throttled",
					attr.String("client", host),
					attr.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
				writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds rounds wait up to whole seconds, at least one and at most a day.
func retryAfterSeconds(wait time.Duration) int {
	const maxRetry = 24 * time.Hour
	if wait > maxRetry {
		wait = maxRetry
	}
	return max(1, int(math.Ceil(wait.Seconds())))
}
