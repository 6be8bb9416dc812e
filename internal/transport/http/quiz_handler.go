package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"quiz-authoring-service/internal/app"
	"quiz-authoring-service/internal/domain"
	"quiz-authoring-service/internal/logger"
)

// QuizHandler exposes the quiz authoring use cases over REST.
type QuizHandler struct {
	service *app.QuizService
	log     *logger.Logger
}

func NewQuizHandler(service *app.QuizService, log *logger.Logger) *QuizHandler {
	return &QuizHandler{service: service, log: log.With("handler", "QuizHandler")}
}

// Register mounts the quiz routes on r.
func (h *QuizHandler) Register(r gin.IRouter) {
	quizzes := r.Group("/quizzes")
	quizzes.POST("", h.Create)
	quizzes.GET("", h.FindAll)
	quizzes.GET("/:id", h.FindOne)
	quizzes.PATCH("/:id", h.Update)
	quizzes.DELETE("/:id", h.Remove)
}

func (h *QuizHandler) Create(c *gin.Context) {
	var input domain.QuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	quiz, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizHandler) FindAll(c *gin.Context) {
	quizzes, err := h.service.FindAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizHandler) FindOne(c *gin.Context) {
	quiz, err := h.service.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) Update(c *gin.Context) {
	var patch domain.QuizPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	quiz, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuizHandler) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	respondError(c, status, code, err)
}

// RequestLogger logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// NewRouter builds the HTTP routes of the service.
func NewRouter(quizzes *QuizHandler, ws *WSHandler, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	quizzes.Register(router)
	if ws != nil {
		router.GET("/ws", ws.ServeWS)
	}
	return router
}
