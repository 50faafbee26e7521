package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/notes-summarizer/internal/common"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
)

const (
	RequestIDHeader = "X-Request-ID"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// JobAPI is the job surface shared by the HTTP and gRPC transports.
type JobAPI interface {
	Start(ctx context.Context, text string) (string, error)
	Status(id string) entity.JobStatus
	Wait(ctx context.Context, id string) (entity.JobStatus, error)
}

// Exporter renders finished jobs.
type Exporter interface {
	JobXLSX(ctx context.Context, id string) ([]byte, error)
}

type StartRequest struct {
	Text string `json:"text"`
}

type StartResponse struct {
	JobID  string            `json:"jobId"`
	Status *entity.JobStatus `json:"status,omitempty"`
}

// HTTPHandler serves the summary REST API.
type HTTPHandler struct {
	jobs        JobAPI
	exports     Exporter
	logger      *slog.Logger
	waitTimeout time.Duration
}

func NewHTTPHandler(jobs JobAPI, exports Exporter, logger *slog.Logger, waitTimeout time.Duration) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if waitTimeout <= 0 {
		waitTimeout = 2 * time.Minute
	}
	return &HTTPHandler{jobs: jobs, exports: exports, logger: logger, waitTimeout: waitTimeout}
}

// NewRouter wires the routes and middleware onto a gin engine.
func NewRouter(h *HTTPHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(h.logger))

	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, "API up") })

	api := r.Group("/api/summary")
	api.POST("/start", h.Start)
	api.GET("/status/:jobId", h.Status)
	api.GET("/export/:jobId", h.Export)
	return r
}

// Start handles POST /api/summary/start. With ?wait=true the response also
// carries the job status once the run finishes or the wait timeout passes.
func (h *HTTPHandler) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	id, err := h.jobs.Start(ctx, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := StartResponse{JobID: id}
	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		waitCtx, cancel := context.WithTimeout(ctx, h.waitTimeout)
		defer cancel()
		st, err := h.jobs.Wait(waitCtx, id)
		if err != nil {
			h.logger.WarnContext(ctx, "http.start.wait_incomplete", "job_id", id, "error", err)
		}
		resp.Status = &st
	}
	c.JSON(http.StatusOK, resp)
}

// Status handles GET /api/summary/status/:jobId.
func (h *HTTPHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobs.Status(c.Param("jobId")))
}

// Export handles GET /api/summary/export/:jobId.
func (h *HTTPHandler) Export(c *gin.Context) {
	id := c.Param("jobId")
	b, err := h.exports.JobXLSX(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="summary-%s.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, b)
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": common.AppMessage(err)})
	case errors.Is(err, common.ErrUpstream):
		c.Header("Content-Type", "application/problem+json")
		c.JSON(http.StatusBadGateway, gin.H{
			"type":   "https://tools.ietf.org/html/rfc9110#section-15.6.3",
			"title":  "Cleaner service error",
			"status": http.StatusBadGateway,
		})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": common.AppMessage(err)})
	case errors.Is(err, common.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": common.AppMessage(err)})
	default:
		h.logger.ErrorContext(c.Request.Context(), "http.internal_error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// RequestID propagates or mints a request id and stores it on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
