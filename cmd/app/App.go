package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"collabCanvas/configs"
	"collabCanvas/internal/handlers"
	"collabCanvas/internal/interfaces"
	"collabCanvas/internal/relay"
	"collabCanvas/internal/repositories"
	"collabCanvas/internal/servers/database"
	"collabCanvas/internal/servers/discovery"
	"collabCanvas/internal/servers/http"
	"collabCanvas/internal/services"
	"collabCanvas/internal/session"

	"github.com/redis/go-redis/v9"
)

var (
	app  *App
	once sync.Once
)

type App struct {
	redis   *redis.Client
	ctx     context.Context
	configs *configs.Config
	logger  *slog.Logger
}

func GetApp() *App {
	once.Do(func() {
		app = &App{}
	})
	return app
}

// LetsGo wires the relay, storage and HTTP surface and serves until ctx ends
// or the process is signalled.
func (app *App) LetsGo(ctx context.Context) error {
	app.ctx = ctx
	app.logger = slog.Default()
	app.initializeConfigs()
	if err := app.initializeRedis(); err != nil {
		return err
	}

	boardRepo, sessionRepo, err := app.initializeRepositories()
	if err != nil {
		return err
	}

	hub := relay.NewHub(app.broker(), app.autosaver(), app.relayOptions(), app.logger)
	go func() {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			app.logger.Error("LetsGo - relay stopped", "err", err)
		}
	}()

	fileManager, err := app.initializeFileStorage()
	if err != nil {
		return err
	}

	boardService := services.NewBoardService(boardRepo, app.configs)
	sessionService := services.NewSessionService(sessionRepo, hub)
	exportService := services.NewExportService(hub, app.logger, app.imageHosts()...)
	fileManagerService := services.NewFileManagerService(fileManager)

	restHandler := handlers.NewRestHandler(
		boardService,
		sessionService,
		exportService,
		fileManagerService,
		hub,
	)
	socketCanvasHandler := handlers.NewSocketCanvasHandler(ctx, hub, boardService)
	handler := handlers.NewHandler(boardService.Secret(), hub)

	addr := app.configs.Viper.GetString("server.addr")
	if app.configs.Viper.GetBool("mdns.enabled") {
		app.advertise(addr)
	}

	return http.NewHttpServer(
		ctx,
		addr,
		hub,
		handler,
		restHandler,
		socketCanvasHandler,
	).Run()
}

func (app *App) initializeConfigs() {
	app.configs = configs.GetConfig()
}

func (app *App) initializeRedis() error {
	if !app.configs.Viper.GetBool("redis.enabled") {
		app.logger.Info("initializeRedis - redis disabled, relay runs single-instance")
		return nil
	}
	app.redis = redis.NewClient(&redis.Options{
		Addr: app.configs.Viper.GetString("redis.addr"),
	})
	if err := app.redis.Ping(app.ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	return nil
}

func (app *App) initializeRepositories() (interfaces.BoardRepository, interfaces.SessionRepository, error) {
	if !app.configs.Viper.GetBool("database.enabled") {
		app.logger.Info("initializeRepositories - database disabled, boards are kept in memory")
		memory := repositories.NewMemoryRepository()
		return memory, memory, nil
	}
	db, err := database.Open(app.configs)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewBoardRepository(db), repositories.NewSessionRepository(db), nil
}

func (app *App) initializeFileStorage() (interfaces.FileManager, error) {
	if !app.configs.Viper.GetBool("minio.enabled") {
		return nil, nil
	}
	minioService, err := services.NewMinioService(app.ctx, app.configs)
	if err != nil {
		return nil, fmt.Errorf("connect to minio: %w", err)
	}
	return minioService, nil
}

// imageHosts lists the object storage hosts exports may fetch images from.
func (app *App) imageHosts() []string {
	v := app.configs.Viper
	if !v.GetBool("minio.enabled") {
		return nil
	}
	return []string{v.GetString("minio.endpoint"), v.GetString("minio.external_endpoint")}
}

func (app *App) broker() relay.Broker {
	if app.redis == nil {
		return relay.NewLocalBroker()
	}
	return relay.NewRedisBroker(app.redis, app.configs.Viper.GetString("redis.channel"))
}

func (app *App) autosaver() *session.Autosaver {
	if app.redis == nil {
		return nil
	}
	freshness := app.configs.Duration("autosave.freshness")
	repo := repositories.NewAutosaveRepository(app.redis, freshness)
	return session.NewAutosaver(repo, freshness, app.logger)
}

func (app *App) relayOptions() relay.Options {
	v := app.configs.Viper
	return relay.Options{
		CanvasWidth:      v.GetInt("canvas.width"),
		CanvasHeight:     v.GetInt("canvas.height"),
		HistoryDepth:     v.GetInt("history.max_depth"),
		SendBuffer:       v.GetInt("relay.send_buffer"),
		EchoOrigin:       v.GetBool("server.echo_origin"),
		AutosaveInterval: app.configs.Duration("relay.autosave_interval"),
	}
}

func (app *App) advertise(addr string) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		app.logger.Warn("advertise - bad server.addr", "addr", addr, "err", err)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		app.logger.Warn("advertise - bad port", "addr", addr, "err", err)
		return
	}
	server, err := discovery.Advertise(app.configs.Viper.GetString("mdns.service"), port)
	if err != nil {
		app.logger.Warn("advertise - mdns failed", "err", err)
		return
	}
	go func() {
		<-app.ctx.Done()
		_ = server.Shutdown()
	}()
	app.logger.Info("advertise - relay announced on the local network", "port", port)
}
