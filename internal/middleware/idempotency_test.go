package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newIdempotentRouter(rdb *redis.Client, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/record", Idempotency(rdb), func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	return r
}

func postRecord(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/record", nil)
	req.Header.Set(HeaderKioskID, "lobby-1")
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency(t *testing.T) {
	cacheKey := IdempotencyKey("/record", "lobby-1", "k-1")
	lockKey := cacheKey + ":lock"

	t.Run("first request is stored", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		calls := 0
		payload, _ := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: json.RawMessage(`{"ok":true}`)})

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(true)
		mock.ExpectSet(cacheKey, payload, idempotencyTTL).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		rec := postRecord(newIdempotentRouter(rdb, &calls), "k-1")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay skips the handler", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		calls := 0
		payload, _ := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: json.RawMessage(`{"ok":true}`)})

		mock.ExpectGet(cacheKey).SetVal(string(payload))

		rec := postRecord(newIdempotentRouter(rdb, &calls), "k-1")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "true", rec.Header().Get(HeaderReplayed))
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
		assert.Equal(t, 0, calls)
	})

	t.Run("concurrent duplicate is rejected", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		calls := 0

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(false)

		rec := postRecord(newIdempotentRouter(rdb, &calls), "k-1")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "CONFLICT")
		assert.Equal(t, 0, calls)
	})

	t.Run("redis fault processes normally", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		calls := 0

		mock.ExpectGet(cacheKey).SetErr(redis.ErrClosed)

		rec := postRecord(newIdempotentRouter(rdb, &calls), "k-1")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("no key or no redis", func(t *testing.T) {
		calls := 0
		rdb, _ := redismock.NewClientMock()

		assert.Equal(t, http.StatusCreated, postRecord(newIdempotentRouter(rdb, &calls), "").Code)
		assert.Equal(t, http.StatusCreated, postRecord(newIdempotentRouter(nil, &calls), "k-1").Code)
		assert.Equal(t, 2, calls)
	})
}

