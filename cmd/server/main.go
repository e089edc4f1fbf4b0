package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Skufu/GoSymptom/internal/artifact"
	"github.com/Skufu/GoSymptom/internal/auth"
	"github.com/Skufu/GoSymptom/internal/cache"
	"github.com/Skufu/GoSymptom/internal/config"
	"github.com/Skufu/GoSymptom/internal/handler"
	"github.com/Skufu/GoSymptom/internal/logging"
	"github.com/Skufu/GoSymptom/internal/prediction"
	"github.com/Skufu/GoSymptom/internal/scoring"
	"github.com/Skufu/GoSymptom/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	scorer, catalog, err := loadModel(ctx, cfg)
	if err != nil {
		log.Fatalf("model load failed: %v", err)
	}

	var (
		opts    []prediction.Option
		dbCheck handler.HealthChecker
		kvCheck handler.HealthChecker
	)

	if cfg.EnableDB {
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer pool.Close()

		pg := store.New(pool)
		opts = append(opts, prediction.WithStore(pg))
		dbCheck = pg
	}

	if cfg.RedisAddr != "" {
		client, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Warn("result cache disabled")
		} else {
			defer client.Close()
			rc := cache.NewRedis(client, cfg.CacheTTL)
			opts = append(opts, prediction.WithCache(rc))
			kvCheck = rc
		}
	}

	svc, err := prediction.NewService(scorer, catalog, opts...)
	if err != nil {
		log.Fatalf("service setup failed: %v", err)
	}

	var jwtSvc *auth.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = auth.NewJWTService(cfg.JWTSecret)
	}

	h := handler.New(svc, handler.Options{
		ExposeErrorDetails: cfg.ExposeErrorDetails,
		Probes: []handler.Probe{
			{Name: "db", Check: dbCheck},
			{Name: "cache", Check: kvCheck},
		},
	})

	router := setupRouter(h, jwtSvc)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.WithFields(log.Fields{
		"port":          cfg.Port,
		"scorer":        scorer.Name(),
		"model_version": scorer.Version(),
		"diseases":      catalog.Len(),
		"persistence":   svc.Persistent(),
	}).Info("server listening")
	waitForShutdown(server)
}

// loadModel reads the catalog and the bundle for the configured scorer, pulling
// both from MinIO first when artifacts are stored there.
func loadModel(ctx context.Context, cfg *config.Config) (scoring.Scorer, *artifact.Catalog, error) {
	modelPath, catalogPath := cfg.ModelPath, cfg.CatalogPath

	if cfg.ArtifactSource == config.SourceMinIO {
		paths, err := artifact.FetchMinIO(ctx, artifact.MinIOOptions{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		}, cfg.ArtifactDir, modelPath, catalogPath)
		if err != nil {
			return nil, nil, err
		}
		modelPath, catalogPath = paths[0], paths[1]
	}

	catalog, err := artifact.LoadCatalog(catalogPath)
	if err != nil {
		return nil, nil, err
	}

	var scorer scoring.Scorer
	switch cfg.Scorer {
	case config.ScorerHybrid:
		b, err := artifact.LoadHybrid(modelPath)
		if err != nil {
			return nil, nil, err
		}
		scorer = scoring.NewHybridScorer(b)
	case config.ScorerSimilarity:
		b, err := artifact.LoadSimilarity(modelPath)
		if err != nil {
			return nil, nil, err
		}
		scorer = scoring.NewSimilarityScorer(b)
	default:
		return nil, nil, fmt.Errorf("unknown scorer %q", cfg.Scorer)
	}

	if err := artifact.CheckCatalog(catalog, scorer.Classes()); err != nil {
		return nil, nil, err
	}
	return scorer, catalog, nil
}

func setupRouter(h *handler.Handler, jwtSvc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(
		logging.RequestID(),
		logging.Requests(),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
			ExposeHeaders: []string{logging.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
		auth.Optional(jwtSvc),
	)

	h.Register(router)
	return router
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
