package router

import (
	"time"

	"worksync/backend/foundation/web"
	"worksync/backend/internal/middleware"
	"worksync/backend/internal/pkg/repository/postgresql"
	"worksync/backend/internal/repository/postgres/attendance"
	"worksync/backend/internal/repository/postgres/audit"
	"worksync/backend/internal/repository/postgres/syncerror"
	"worksync/backend/internal/repository/postgres/worker"
	"worksync/backend/internal/repository/replica"
	"worksync/backend/internal/service/ingest"
	syncservice "worksync/backend/internal/service/sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	attendance_controller "worksync/backend/internal/controller/http/v1/attendance"
	sync_controller "worksync/backend/internal/controller/http/v1/sync"
	syncerror_controller "worksync/backend/internal/controller/http/v1/syncerror"
	worker_controller "worksync/backend/internal/controller/http/v1/worker"
)

type Router struct {
	*web.App
	postgresDB   *postgresql.Database
	redisDB      *redis.Client
	replicaDB    *replica.Repository
	location     *time.Location
	snapshotPath string
	port         string
	logger       *logrus.Logger
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	redisDB *redis.Client,
	replicaDB *replica.Repository,
	location *time.Location,
	snapshotPath string,
	port string,
	logger *logrus.Logger,
) *Router {
	return &Router{
		app,
		postgresDB,
		redisDB,
		replicaDB,
		location,
		snapshotPath,
		port,
		logger,
	}
}

func (r Router) Init() error {

	r.HandleMethodNotAllowed = true
	r.Use(middleware.CorsMiddleware())

	// - postgresql
	workerPostgres := worker.NewRepository(r.postgresDB)
	attendancePostgres := attendance.NewRepository(r.postgresDB, r.location)
	syncErrorPostgres := syncerror.NewRepository(r.postgresDB)
	auditPostgres := audit.NewRepository(r.postgresDB)

	// service
	syncLock := syncservice.NewLock(r.redisDB)
	syncEngine := syncservice.NewService(workerPostgres, r.replicaDB, syncErrorPostgres, auditPostgres, syncLock, r.logger)
	ingestService := ingest.NewService(attendancePostgres, workerPostgres, syncErrorPostgres, r.logger)

	// controller
	syncController := sync_controller.NewController(syncEngine, syncLock, r.snapshotPath)
	attendanceController := attendance_controller.NewController(ingestService, attendancePostgres)
	syncErrorController := syncerror_controller.NewController(syncErrorPostgres)
	workerController := worker_controller.NewController(workerPostgres)

	// #sync
	r.Post("/api/v1/sync/replica", syncController.SyncReplica)
	r.Post("/api/v1/sync/snapshot", syncController.SyncSnapshot)
	r.Get("/api/v1/sync/snapshot/stats", syncController.SnapshotStats)
	r.Get("/api/v1/sync/health", syncController.Health)
	r.Get("/api/v1/sync/search", syncController.Search)

	// #attendance
	r.Post("/api/v1/attendance/batch", attendanceController.Batch)
	r.Get("/api/v1/attendance/today", attendanceController.GetToday)
	r.Get("/api/v1/attendance/unmatched", attendanceController.GetUnmatched)

	// #worker
	r.Get("/api/v1/worker/list", workerController.GetList)
	r.Get("/api/v1/worker/statistics", workerController.GetStatistics)
	r.Get("/api/v1/worker/:id", workerController.GetDetailById)

	// #sync_error
	r.Get("/api/v1/sync_error/list", syncErrorController.GetList)
	r.Patch("/api/v1/sync_error/:id", syncErrorController.UpdateStatus)

	return r.Run(r.port)
}
