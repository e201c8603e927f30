package main

import (
	"time"

	"worksync/backend/foundation/web"
	"worksync/backend/internal/commands"
	"worksync/backend/internal/pkg/config"
	"worksync/backend/internal/pkg/repository/postgresql"
	"worksync/backend/internal/repository/replica"
	"worksync/backend/internal/router"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		logger.WithError(err).Fatal("loading configuration")
	}
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	postgresDB := postgresql.NewDatabase(postgresql.Config{
		Username:   cfg.DBUsername,
		Password:   cfg.DBPassword,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		Name:       cfg.DBName,
		DisableTLS: cfg.DisableTLS,
		Debug:      cfg.Debug,
	})
	commands.MigrateUP(postgresDB)

	redisDB := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	replicaDB, err := replica.NewRepository(cfg.ReplicaDSN, cfg.ReplicaSiteCd)
	if err != nil {
		logger.WithError(err).Fatal("connecting to replica")
	}

	location, err := time.LoadLocation(cfg.SiteTimezone)
	if err != nil {
		logger.WithError(err).Fatal("loading site timezone")
	}

	r := router.NewRouter(
		web.NewApp(),
		postgresDB,
		redisDB,
		replicaDB,
		location,
		cfg.SnapshotPath,
		cfg.ServerPort,
		logger,
	)

	logger.WithField("port", cfg.ServerPort).Info("starting server")
	if err := r.Init(); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
