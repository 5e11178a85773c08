package fixtures

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizplay/internal/quiz"
)

// Options configures the fixture server.
type Options struct {
	// Secret enables HS256 bearer authentication when non-empty.
	Secret []byte

	// Version is sent in the X-API-Version header.
	Version string

	Logger *slog.Logger
}

type errorResponse struct {
	Message string `json:"message"`
}

// Handler serves the read-only test endpoints from a Catalog.
type Handler struct {
	catalog *Catalog
	logger  *slog.Logger
}

// NewRouter builds a gin engine serving catalog under /api.
func NewRouter(catalog *Catalog, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{catalog: catalog, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), versionHeader(opts.Version))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "tests": catalog.Len()})
	})

	api := router.Group("/api")
	if len(opts.Secret) > 0 {
		api.Use(bearerAuth(opts.Secret))
	}
	{
		api.GET("/tests", h.ListTests)
		api.GET("/tests/:id", h.GetTest)
	}
	return router
}

// ListTests handles GET /api/tests.
func (h *Handler) ListTests(c *gin.Context) {
	var f Filter
	var err error
	if v := c.Query("page"); v != "" {
		if f.Page, err = strconv.Atoi(v); err != nil || f.Page < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Message: "page must be a positive integer"})
			return
		}
	}
	if v := c.Query("pageSize"); v != "" {
		if f.PageSize, err = strconv.Atoi(v); err != nil || f.PageSize < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Message: "pageSize must be a positive integer"})
			return
		}
	}
	if v := c.Query("status"); v != "" {
		status, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Message: "status must be an integer"})
			return
		}
		f.Status = &status
	}
	f.Search = c.Query("search")

	tests, total := h.catalog.List(f)
	out := make([]quiz.TestRecord, len(tests))
	for i, t := range tests {
		out[i] = withQuestions(t)
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"tests": out, "totalTests": total}})
}

// GetTest handles GET /api/tests/:id.
func (h *Handler) GetTest(c *gin.Context) {
	id := c.Param("id")
	test, ok := h.catalog.Get(id)
	if !ok {
		h.logger.Debug("test not found", "test_id", id)
		c.JSON(http.StatusNotFound, errorResponse{Message: "Test not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"test": withQuestions(test)}})
}

// withQuestions keeps questionsId an array in the encoded body.
func withQuestions(t quiz.TestRecord) quiz.TestRecord {
	if t.Questions == nil {
		t.Questions = []quiz.QuestionRecord{}
	}
	return t
}

func versionHeader(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if version != "" {
			c.Header("X-API-Version", version)
		}
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP())
	}
}
