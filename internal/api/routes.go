package api

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/omtsf-engine/internal/validate"
)

// APIHandler wires the pure engine packages (validate, merge, redact,
// diff) to HTTP. It holds no engine state of its own beyond the
// optional external data source L3 rules consult and the optional
// websocket hub used for operation-completion events — every call
// below is otherwise a pure function of its request body, matching the
// engine's own concurrency model.
type APIHandler struct {
	externalData validate.ExternalDataSource
	wsHub        *Hub
}

// SetupRouter builds the engine's HTTP surface. externalData may be nil,
// in which case L3 validation rules that need it are skipped rather than
// erroring, matching the engine's own "absent ⇒ skipped" contract.
// wsHub may be nil to disable the operation-event stream entirely.
func SetupRouter(externalData validate.ExternalDataSource, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var.
	// Production: ALLOWED_ORIGINS=https://example.com,https://www.example.com
	// Development: leave empty for *.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{
		externalData: externalData,
		wsHub:        wsHub,
	}

	// ── Public endpoints (no auth) ─────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		if wsHub != nil {
			pub.GET("/stream", wsHub.Subscribe)
		}
	}

	// ── Protected endpoints (require bearer token if API_AUTH_TOKEN set) ──
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	// Rate-limit protected endpoints to 30 req/min per IP (burst=5):
	// merge and diff both walk the full node/edge list of every input,
	// so a caller repeatedly submitting large files is worth throttling.
	auth.Use(NewRateLimiter(30, 5).Middleware())
	{
		auth.POST("/validate", handler.handleValidate)
		auth.POST("/merge", handler.handleMerge)
		auth.POST("/redact", handler.handleRedact)
		auth.POST("/diff", handler.handleDiff)
	}

	return r
}
