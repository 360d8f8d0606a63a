package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/orthoflow/clinic-api/internal/config"
	"github.com/orthoflow/clinic-api/internal/db"
	"github.com/orthoflow/clinic-api/internal/logger"
	"github.com/orthoflow/clinic-api/internal/metrics"
	"github.com/orthoflow/clinic-api/internal/middleware"
	"github.com/orthoflow/clinic-api/internal/routes"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	database := db.NewDB(cfg, log)

	col := metrics.NewCollector()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(col))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	routes.Setup(r, database, cfg, col, log)

	log.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
