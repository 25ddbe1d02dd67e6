package middleware

import (
	"net/http"
	"time"

	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/erpsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BatchIDHeader identifies one ERP push. The exporter sends the same
// value on every retry of the same batch.
const BatchIDHeader = "X-Sync-Batch-ID"

// Idempotency short-circuits replayed sync batches. A request without
// the header is processed normally; a request whose batch ID was seen
// within the TTL is answered with success and no writes. The mark is
// taken before the handler runs, so two racing retries cannot both
// apply; if the handler then fails, the mark is dropped again so the
// ERP's next retry goes through.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		batchID := c.GetHeader(BatchIDHeader)
		if batchID == "" {
			c.Next()
			return
		}

		isNew, err := store.MarkProcessed(c.Request.Context(), batchID, ttl)
		if err != nil {
			// the store being down must not block the sync path
			logger.Error("idempotency store unavailable, processing batch without dedup",
				zap.String("batch_id", batchID), zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			logger.Info("replayed sync batch skipped", zap.String("batch_id", batchID))
			c.AbortWithStatusJSON(http.StatusOK,
				dto.NewSuccessResponse("batch already processed", nil))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Clear(c.Request.Context(), batchID); err != nil {
				logger.Error("failed to clear idempotency mark after failed batch",
					zap.String("batch_id", batchID), zap.Error(err))
			}
		}
	}
}
