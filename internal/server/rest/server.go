// Package rest exposes the chat services as a JSON API over gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/logging"
	"github.com/dmitrijs2005/libertalk/internal/server/media"
	"github.com/dmitrijs2005/libertalk/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// HTTPServer serves the API and, for a local media backend, the uploads.
type HTTPServer struct {
	address       string
	logger        logging.Logger
	users         *services.UserService
	rooms         *services.RoomService
	media         media.Store
	maxUploadSize int64
	router        *gin.Engine
}

func NewHTTPServer(address string, l logging.Logger, us *services.UserService, rs *services.RoomService, ms media.Store, maxUploadSize int64) *HTTPServer {
	if maxUploadSize <= 0 {
		maxUploadSize = media.DefaultMaxSize
	}
	s := &HTTPServer{
		address:       address,
		logger:        l.With("module", "http_server"),
		users:         us,
		rooms:         rs,
		media:         ms,
		maxUploadSize: maxUploadSize,
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the routed gin engine.
func (s *HTTPServer) Handler() http.Handler { return s.router }

func (s *HTTPServer) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = s.maxUploadSize

	if local, ok := s.media.(*media.LocalStore); ok {
		r.Static(media.URLPrefix, local.Dir())
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.POST("/register", s.register)
	api.POST("/login", s.login)

	authed := api.Group("", s.authMiddleware())
	authed.POST("/logout", s.logout)
	authed.GET("/me", s.me)
	authed.POST("/me/avatar", s.updateAvatar)

	authed.GET("/rooms", s.listOpenRooms)
	authed.POST("/rooms", s.createRoom)
	authed.GET("/rooms/search", s.searchClosedRooms)

	room := authed.Group("/rooms/:room")
	room.POST("/unlock", s.unlockRoom)
	room.GET("", s.getRoom)
	room.GET("/messages", s.getMessages)
	room.POST("/messages", s.postMessage)
	room.POST("/messages/:id/action", s.messageAction)
	room.POST("/messages/:id/vote", s.vote)
	room.POST("/admin", s.adminAction)
	room.GET("/participants", s.participants)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
