package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collabCanvas/internal/handlers"
	"collabCanvas/internal/relay"

	"github.com/gin-gonic/gin"
)

type HttpServer struct {
	ctx                 context.Context
	addr                string
	router              *gin.Engine
	hub                 *relay.Hub
	handler             *handlers.Handler
	restHandler         *handlers.RestHandler
	socketCanvasHandler *handlers.SocketCanvasHandler
}

func NewHttpServer(
	ctx context.Context,
	addr string,
	hub *relay.Hub,
	handler *handlers.Handler,
	restHandler *handlers.RestHandler,
	socketCanvasHandler *handlers.SocketCanvasHandler,
) *HttpServer {
	hs := &HttpServer{
		ctx:                 ctx,
		addr:                addr,
		hub:                 hub,
		handler:             handler,
		restHandler:         restHandler,
		socketCanvasHandler: socketCanvasHandler,
	}
	hs.initializeGin()
	hs.setupRoutes()
	return hs
}

// Router exposes the configured engine, mainly for httptest.
func (hs *HttpServer) Router() *gin.Engine { return hs.router }

// Run serves until SIGINT/SIGTERM or until the server context ends.
func (hs *HttpServer) Run() error {
	server := hs.startServer()
	return hs.waitForShutdown(server)
}

func (hs *HttpServer) initializeGin() {
	hs.router = gin.New()
	hs.router.Use(gin.Recovery(), requestLogger())
}

func (hs *HttpServer) setupRoutes() {
	hs.router.GET("/healthz", hs.handler.Health)

	api := hs.router.Group("/api")
	api.POST("/boards", hs.restHandler.CreateBoard)
	api.GET("/boards/:id", hs.restHandler.GetBoard)
	api.POST("/boards/:id/join", hs.restHandler.JoinBoard)

	authenticated := api.Group("", hs.handler.MustAuthenticateMiddleware())
	authenticated.POST("/images", hs.restHandler.UploadImage)

	board := authenticated.Group("/boards/:id", hs.handler.MustBelongToBoardMiddleware())
	board.GET("/snapshot", hs.restHandler.GetSnapshot)
	board.GET("/export.png", hs.restHandler.ExportPNG)
	board.GET("/export.pdf", hs.restHandler.ExportPDF)
	board.POST("/sessions", hs.restHandler.SaveSession)
	board.GET("/sessions", hs.restHandler.ListSessions)
	board.POST("/sessions/:name/load", hs.restHandler.LoadSession)
	board.DELETE("/sessions/:name", hs.restHandler.DeleteSession)

	hs.router.GET("/ws/boards/:id", hs.socketCanvasHandler.HandleSocketCanvasRoute)
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		slog.Debug("http request",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"status", ctx.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (hs *HttpServer) startServer() *http.Server {
	server := &http.Server{
		Addr:    hs.addr,
		Handler: hs.router,
	}

	go func() {
		slog.Info("HTTP server started", "addr", hs.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("startServer - listen failed", "err", err)
		}
	}()

	return server
}

func (hs *HttpServer) waitForShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case <-quit:
	case <-hs.ctx.Done():
	}
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := server.Shutdown(ctx)

	// hijacked websocket connections are not closed by Shutdown
	hs.hub.Close(ctx)

	slog.Info("Server exiting")
	return err
}
