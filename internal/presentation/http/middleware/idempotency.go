package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/retailpos-api/pkg/apperror"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the HTTP header for idempotency keys
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyRequired requires an Idempotency-Key on POST requests and replays
// the stored response when the same key is submitted again. The key is
// reserved before the handler runs, so a duplicate that arrives while the
// first request is still running gets 409 instead of running twice. A retry
// whose body differs from the original is also rejected with 409.
func IdempotencyRequired(cfg IdempotencyConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}
		if len(key) > 255 {
			response.BadRequest(c, "Idempotency-Key header is too long")
			c.Abort()
			return
		}

		userID, ok := requestUser(c)
		if !ok {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Invalid request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		existing, err := cfg.Repo.GetByKey(c.Request.Context(), key, userID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if existing != nil && !existing.IsExpired() {
			answerExisting(c, logger, existing, requestHash)
			return
		}

		reserved, err := cfg.Repo.Reserve(c.Request.Context(), &entity.IdempotencyKey{
			Key:         key,
			UserID:      userID,
			Endpoint:    c.Request.Method + " " + c.FullPath(),
			RequestHash: requestHash,
			ExpiresAt:   time.Now().Add(entity.IdempotencyTTL),
		})
		if err != nil {
			logger.Error("failed to reserve idempotency key", zap.String("key", key), zap.Error(err))
			response.Error(c, err)
			c.Abort()
			return
		}
		if !reserved {
			// another request took the key between the lookup and the insert
			existing, err = cfg.Repo.GetByKey(c.Request.Context(), key, userID)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			if existing == nil {
				response.Error(c, errKeyInProgress)
				c.Abort()
				return
			}
			answerExisting(c, logger, existing, requestHash)
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// The reservation outlives the request context.
		ctx := context.WithoutCancel(c.Request.Context())

		// Only successful responses are replayed; failures may be retried.
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			if err := cfg.Repo.Release(ctx, key, userID); err != nil {
				logger.Error("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}

		if err := cfg.Repo.Complete(ctx, key, userID, status, blw.body.String()); err != nil {
			// The key stays reserved, so retries are refused instead of run again.
			logger.Error("failed to store idempotent response; key stays reserved",
				zap.String("key", key),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}
}

var errKeyInProgress = apperror.NewConflictError("A request with this Idempotency-Key is still being processed")

// answerExisting replies to a request whose key is already taken
func answerExisting(c *gin.Context, logger *zap.Logger, existing *entity.IdempotencyKey, requestHash string) {
	defer c.Abort()

	if !existing.Matches(requestHash) {
		response.Error(c, apperror.NewConflictError("Idempotency-Key was already used with a different request body"))
		return
	}
	if existing.IsPending() {
		response.Error(c, errKeyInProgress)
		return
	}
	logger.Info("replaying idempotent response",
		zap.String("key", existing.Key),
		zap.String("user_id", existing.UserID.String()),
	)
	c.Header("X-Idempotency-Replayed", "true")
	c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
}
