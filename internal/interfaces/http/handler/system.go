package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erpsync/backend/internal/infrastructure/persistence"
	"github.com/erpsync/backend/internal/interfaces/http/dto"
)

// SystemHandler serves the operational endpoints.
type SystemHandler struct {
	BaseHandler
	db      *persistence.Database
	appName string
	started time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *persistence.Database, appName string) *SystemHandler {
	return &SystemHandler{db: db, appName: appName, started: time.Now()}
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health handles GET /health. It reports degraded with 503 when the
// database does not answer, so load balancers stop routing sync traffic
// to this instance.
func (h *SystemHandler) Health(c *gin.Context) {
	status := gin.H{
		"service": h.appName,
		"status":  "ok",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}

	if err := h.db.Ping(); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("service degraded", []string{"database unreachable"}))
		return
	}
	status["database"] = "ok"

	c.JSON(http.StatusOK, dto.NewSuccessResponse("service healthy", status))
}
