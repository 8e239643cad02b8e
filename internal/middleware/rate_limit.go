package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"face-attendance/internal/shared/apperror"
	"face-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var ErrTooManyRequests = apperror.New(
	apperror.CodeTooManyRequests,
	"Too many requests",
	http.StatusTooManyRequests,
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter holds one token bucket per caller. Buckets idle for longer
// than limiterIdleTTL are dropped on the next sweep.
type KeyedLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	r         rate.Limit // requests per second
	b         int        // burst
	lastSweep time.Time
	now       func() time.Time
}

func NewKeyedLimiter(r rate.Limit, b int) *KeyedLimiter {
	if b < 1 {
		b = 1
	}
	return &KeyedLimiter{
		entries:   make(map[string]*limiterEntry),
		r:         r,
		b:         b,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

// Reserve takes one token for key. When the bucket is empty it returns the
// delay after which a retry would succeed.
func (k *KeyedLimiter) Reserve(key string) (bool, time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) > limiterIdleTTL {
		for key, e := range k.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(k.entries, key)
			}
		}
		k.lastSweep = now
	}

	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(k.r, k.b)}
		k.entries[key] = e
	}
	e.lastSeen = now

	res := e.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// RateLimitKiosk keys on the client IP. The kiosk id header is unauthenticated
// and must not choose the bucket.
func RateLimitKiosk(limiter *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, wait := limiter.Reserve(c.ClientIP()); !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			response.AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
