package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/analytics"
	"github.com/energee/energee-site/internal/config"
	"github.com/energee/energee-site/internal/content"
	"github.com/energee/energee-site/internal/db"
	"github.com/energee/energee-site/internal/editor"
	"github.com/energee/energee-site/internal/http/api/admin"
	"github.com/energee/energee-site/internal/http/api/front"
	"github.com/energee/energee-site/internal/leads"
	"github.com/energee/energee-site/internal/notify"
	"github.com/energee/energee-site/internal/ratelimit"
	"github.com/energee/energee-site/internal/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds how long in-flight requests may finish after ctx is done.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn.WithContext(ctx))
}

// RunServer boots the site server and blocks until ctx is done.
func RunServer(ctx context.Context, cfg config.AppConfig, defaultPort int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	logCfg, err := config.LoadLogConfig(configPath)
	if err != nil {
		return err
	}
	configureLogging(logCfg)

	serverCfg, err := config.LoadServerConfig(configPath, defaultPort)
	if err != nil {
		return err
	}
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	jwtCfg, err := config.LoadJWTConfig(configPath)
	if err != nil {
		return err
	}
	redisCfg, err := config.LoadRedisConfig(configPath)
	if err != nil {
		return err
	}
	limits, err := config.LoadRateLimitConfig(configPath)
	if err != nil {
		return err
	}
	crmCfg, err := config.LoadCRMConfig(configPath)
	if err != nil {
		return err
	}
	contentCfg, err := config.LoadContentConfig(configPath)
	if err != nil {
		return err
	}
	adminCfg, err := config.LoadAdminBootstrapConfig(configPath)
	if err != nil {
		return err
	}
	smtpCfg, err := config.LoadSMTPConfig(configPath)
	if err != nil {
		return err
	}

	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if _, errBootstrap := EnsureBootstrapAdmin(conn, adminCfg); errBootstrap != nil {
		return errBootstrap
	}

	if strings.TrimSpace(jwtCfg.Secret) == "" {
		secret, errSecret := security.GenerateRandomString(32)
		if errSecret != nil {
			return fmt.Errorf("generate jwt secret: %w", errSecret)
		}
		jwtCfg.Secret = secret
		log.Warn("jwt secret not configured; generated an ephemeral secret, admin sessions end on restart")
	}

	var redisClient *redis.Client
	if redisCfg.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     strings.TrimSpace(redisCfg.Addr),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		defer func() {
			if errClose := redisClient.Close(); errClose != nil {
				log.WithError(errClose).Warn("close redis client")
			}
		}()
	}

	loader := content.NewLoader(conn)
	if errRefresh := loader.Refresh(ctx); errRefresh != nil {
		log.WithError(errRefresh).Warn("initial content load incomplete, serving defaults where missing")
	}
	go loader.Run(ctx, contentCfg.RefreshInterval)

	broadcaster := content.NewBroadcaster(redisClient, redisCfg.Prefix, uuid.NewString())
	go broadcaster.Listen(ctx, loader)
	notifier := content.NewNotifier(loader, broadcaster)

	recorder := analytics.NewRecorder(conn)
	leadService := leads.NewService(conn, loader, recorder)

	limiter := ratelimit.NewManager(ratelimit.OptionsFromConfig(redisCfg, redisClient))
	log.WithField("backend", limiter.Backend()).Info("rate limiter ready")

	worker := leads.NewWorker(conn, loader, leads.NewMauticClient(crmCfg.Timeout), notify.NewMailNotifier(smtpCfg), crmCfg)
	worker.Start(ctx)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	front.RegisterFrontRoutes(engine, front.Deps{
		Content:   loader,
		Leads:     leadService,
		Analytics: recorder,
		Limiter:   limiter,
		Limits:    limits,
	})
	admin.RegisterAdminRoutes(engine, admin.Deps{
		DB:        conn,
		JWT:       jwtCfg,
		Editor:    editor.New(conn, notifier),
		Notifier:  notifier,
		Analytics: recorder,
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              serverCfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting energee site on %s (config=%s)", srv.Addr, configPath)
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}
	log.Info("server stopped")
	return nil
}

// configureLogging applies the log level and gin mode.
func configureLogging(cfg config.LogConfig) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, errParse := log.ParseLevel(cfg.Level)
	if errParse != nil {
		log.Warnf("unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	if cfg.Debug {
		level = log.DebugLevel
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetLevel(level)
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}
