package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockBusy means the lease was held by someone else for the whole wait.
var ErrLockBusy = errors.New("attendance: employee-day lease busy")

const (
	lockKeyPrefix    = "attendance:lock:"
	lockRetryBackoff = 50 * time.Millisecond
	releaseTimeout   = 2 * time.Second
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lease that was taken over is never released by the old owner.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// LockKey scopes a lease to one employee and one calendar day.
func LockKey(employeeID string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s", lockKeyPrefix, employeeID, day.Format(dateLayout))
}

//go:generate mockgen -source=attendance_lock.go -destination=mock/attendance_lock_mock.go -package=mock
type Locker interface {
	// Acquire blocks until the lease is held, the wait budget runs out
	// (ErrLockBusy) or ctx is done. The returned func releases the lease.
	Acquire(ctx context.Context, key string) (func(), error)
}

// NewLocker picks the redis lease when a client is available and an
// in-process keyed mutex otherwise.
func NewLocker(rdb *redis.Client, ttl, wait time.Duration, logger ...*zap.Logger) Locker {
	l := zap.L().Named("attendance.locker")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.locker")
	}
	if rdb == nil {
		return NewLocalLocker(wait)
	}
	return NewRedisLocker(rdb, ttl, wait, l)
}

type RedisLocker struct {
	rdb    *redis.Client
	ttl    time.Duration
	wait   time.Duration
	token  func() string
	logger *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.L().Named("attendance.locker")
	}
	return &RedisLocker{
		rdb:    rdb,
		ttl:    ttl,
		wait:   wait,
		token:  uuid.NewString,
		logger: logger,
	}
}

// WithToken overrides the lease token generator.
func (l *RedisLocker) WithToken(gen func() string) *RedisLocker {
	l.token = gen
	return l
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := l.token()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lease %s: %w", key, err)
		}
		if ok {
			return func() { l.release(ctx, key, token) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockBusy
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryBackoff):
		}
	}
}

func (l *RedisLocker) release(ctx context.Context, key, token string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := l.rdb.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
		l.logger.Warn("lease release failed, waiting for ttl",
			zap.String("key", key),
			zap.Duration("ttl", l.ttl),
			zap.Error(err),
		)
	}
}

// LocalLocker serializes holders of the same key inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot), wait: wait}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	s := l.ref(key)

	select {
	case s.ch <- struct{}{}:
	default:
		if err := l.waitFor(ctx, s); err != nil {
			l.unref(key)
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key)
		})
	}, nil
}

func (l *LocalLocker) waitFor(ctx context.Context, s *slot) error {
	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrLockBusy
	}
}

func (l *LocalLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
