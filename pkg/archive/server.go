package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartOpts holds configuration for the archive HTTP server.
type StartOpts struct {
	Store *Store
	Port  int
	Out   io.Writer
}

// Start launches the archive server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Store == nil {
		return errors.New("archive: store is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, opts.Store)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Archive listening at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// registerRoutes sets up the archive routes on the Gin router.
func registerRoutes(router *gin.Engine, store *Store) {
	router.POST("/api/live/session", handleCreateSession(store))
	router.PUT("/api/live/session", handleCloseSession(store))
	router.POST("/api/live/message", handleAppendMessage(store))
	router.GET("/api/live/sessions/user/:user_id", handleSessionsByUser(store))
	router.GET("/api/live/sessions/:id", handleSession(store))
}

func handleCreateSession(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var meta SessionMeta
		if err := c.ShouldBindJSON(&meta); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sess, err := store.CreateSession(c.Request.Context(), meta, c.ClientIP(), c.Request.UserAgent())
		if err != nil {
			status := http.StatusInternalServerError
			if meta.UserID == "" {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		slog.Info("session created", "id", sess.ID, "user", sess.UserID, "model", sess.ModelName)
		c.JSON(http.StatusCreated, sess)
	}
}

type closeSessionRequest struct {
	ID        string `json:"id" binding:"required"`
	Status    Status `json:"status" binding:"required"`
	LastError string `json:"last_error,omitempty"`
}

func handleCloseSession(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req closeSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := store.Close(c.Request.Context(), req.ID, req.Status, req.LastError)
		switch {
		case errors.Is(err, ErrNotFound):
			slog.Warn("close for unknown session", "id", req.ID)
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"id": req.ID, "status": req.Status})
		}
	}
}

type appendMessageRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Sender    Sender `json:"sender" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

func handleAppendMessage(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req appendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		msg, err := store.AppendMessage(c.Request.Context(), req.SessionID, req.Sender, req.Text)
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusCreated, msg)
		}
	}
}

func handleSessionsByUser(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := store.SessionsByUser(c.Request.Context(), c.Param("user_id"), DefaultUserSessionLimit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if sessions == nil {
			sessions = []Session{}
		}
		c.JSON(http.StatusOK, sessions)
	}
}

func handleSession(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := store.Session(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			if detail.Messages == nil {
				detail.Messages = []Message{}
			}
			c.JSON(http.StatusOK, detail)
		}
	}
}
