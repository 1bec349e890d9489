package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"example.com/socialfeed/internal/logger"
	"example.com/socialfeed/internal/middleware"
	"example.com/socialfeed/internal/social"
	"github.com/gin-gonic/gin"
)

type Server struct {
	registry *social.Registry
}

// Options controls how Run listens.
type Options struct {
	Addr            string
	TLSCertFile     string // HTTPS is used only when both files are set
	TLSKeyFile      string
	ShutdownTimeout time.Duration
}

var logg = logger.New()

// NewRouter builds the admin API on top of reg.
func NewRouter(reg *social.Registry) *gin.Engine {
	s := &Server{registry: reg}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	s.registerRoutes(router)
	return router
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.GET("/stats", s.statsHandler)

	users := router.Group("/users")
	{
		users.POST("", s.createUserHandler)
		users.GET("", s.listUsersHandler)
		users.GET("/:id", s.getUserHandler)
		users.POST("/:id/follow", s.followHandler)
		users.DELETE("/:id/follow/:followee", s.unfollowHandler)
		users.POST("/:id/posts", s.createPostHandler)
		users.GET("/:id/feed", s.getFeedHandler)
	}

	groups := router.Group("/groups")
	{
		groups.POST("", s.createGroupHandler)
		groups.GET("", s.listGroupsHandler)
		groups.GET("/:id", s.getGroupHandler)
		groups.POST("/:id/members", s.addMemberHandler)
	}
}

// Run starts the HTTP server and shuts it down gracefully when ctx is done.
func Run(ctx context.Context, reg *social.Registry, opts Options) {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      NewRouter(reg),
		ReadTimeout:  10 * time.Second, // prevent slowloris attacks
		WriteTimeout: 10 * time.Second,
	}

	// --- Start server in a goroutine ---
	go func() {
		var err error
		if opts.TLSCertFile != "" && opts.TLSKeyFile != "" {
			logg.Info("server", "Starting HTTPS server on "+opts.Addr)
			err = srv.ListenAndServeTLS(opts.TLSCertFile, opts.TLSKeyFile)
		} else {
			logg.Info("server", "Starting HTTP server on "+opts.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server", "Server stopped unexpectedly", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
	} else {
		logg.Info("server", "Server stopped gracefully")
	}
}
