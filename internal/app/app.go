package app

import (
	"context"
	"curriculum_backend/internal/config"
	"curriculum_backend/internal/controller"
	"curriculum_backend/internal/repository"
	"curriculum_backend/internal/service"
	"curriculum_backend/internal/util"
	"curriculum_backend/pkg/configwatcher"
	"curriculum_backend/pkg/database"
	"curriculum_backend/pkg/logger"
	"curriculum_backend/pkg/monitoring"
	"curriculum_backend/pkg/security"
	"curriculum_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

// ConfigDir 默认配置目录
const ConfigDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	current         atomic.Pointer[config.Config]
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	curriculum *repository.CurriculumRepository
	treeCache  *repository.TreeCache
}

type services struct {
	curriculum *service.CurriculumService
	storage    *service.StorageService
}

type controllers struct {
	course     *controller.CourseController
	curriculum *controller.CurriculumController
	quiz       *controller.QuizController
	upload     *controller.UploadController
	settings   *controller.SettingsController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// CurrentConfig 返回最近一次加载成功的配置
func (a *App) CurrentConfig() *config.Config {
	return a.current.Load()
}

func (a *App) configDir() string {
	if a.Config.Dir != "" {
		return a.Config.Dir
	}
	return ConfigDir
}

func (a *App) reloadConfig(cfg *config.Config) {
	cfg.ForceMigrate = a.Config.ForceMigrate
	cfg.MigrateOnly = a.Config.MigrateOnly
	cfg.Dir = a.Config.Dir
	a.current.Store(cfg)
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		curriculum: repository.NewCurriculumRepository(db),
		treeCache:  repository.NewTreeCache(rdb, time.Duration(cfg.Redis.TreeTTLSeconds)*time.Second),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	return &services{
		curriculum: service.NewCurriculumService(repos.curriculum, db, service.ClaimsAuthorizer{}, repos.treeCache),
		storage:    service.NewStorageService(cfg),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		course:     controller.NewCourseController(s.curriculum),
		curriculum: controller.NewCurriculumController(s.curriculum),
		quiz:       controller.NewQuizController(s.curriculum),
		upload:     controller.NewUploadController(s.storage),
		settings:   controller.NewSettingsController(a.CurrentConfig),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.NewRateLimiter(cfg.RateLimit).Handler())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// setupRouter 组装仓储、服务、控制器与路由
func (a *App) setupRouter(db *gorm.DB, rdb *redis.Client) {
	cfg := a.Config
	repos := a.initRepositories(db, rdb, cfg)
	services := a.initServices(repos, cfg, db)
	controllers := a.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	a.Router = router

	a.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		a.tracer = tp
	}

	a.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != "release")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	app.current.Store(cfg)
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存不可用时直接读库
		logger.Log.Warn("Failed to initialize redis, course tree cache disabled", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	app.setupRouter(db, rdb)

	// 日志级别随 server.mode 热更新
	app.RegisterConfigCallback(func(next *config.Config) {
		logger.InitLogger(next)
		logger.Log.Info("配置已重新加载",
			zap.String("mode", next.Server.Mode),
			zap.Int("reorderDebounceMs", next.Reorder.DebounceMS))
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := configwatcher.Watch(watchCtx, a.configDir(), configwatcher.DefaultDebounce, a.reloadConfig); err != nil {
			logger.Log.Warn("配置热更新不可用", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
