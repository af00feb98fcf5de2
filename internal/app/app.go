package app

import (
	"net/http"

	"gorm.io/gorm"

	"hotel-ops-go/internal/config"
	"hotel-ops-go/internal/db"
	attendancedomain "hotel-ops-go/internal/domain/attendance"
	bookingsdomain "hotel-ops-go/internal/domain/bookings"
	devicesdomain "hotel-ops-go/internal/domain/devices"
	inventorydomain "hotel-ops-go/internal/domain/inventory"
	leavedomain "hotel-ops-go/internal/domain/leave"
	snapshotdomain "hotel-ops-go/internal/domain/snapshot"
	syncdomain "hotel-ops-go/internal/domain/sync"
	tasksdomain "hotel-ops-go/internal/domain/tasks"
	"hotel-ops-go/internal/repository/inmemory"
	attendancerepo "hotel-ops-go/internal/repository/postgres/attendance"
	bookingsrepo "hotel-ops-go/internal/repository/postgres/bookings"
	devicesrepo "hotel-ops-go/internal/repository/postgres/devices"
	inventoryrepo "hotel-ops-go/internal/repository/postgres/inventory"
	leaverepo "hotel-ops-go/internal/repository/postgres/leave"
	snapshotrepo "hotel-ops-go/internal/repository/postgres/snapshot"
	syncrepo "hotel-ops-go/internal/repository/postgres/sync"
	synclogrepo "hotel-ops-go/internal/repository/postgres/synclog"
	tasksrepo "hotel-ops-go/internal/repository/postgres/tasks"
	"hotel-ops-go/internal/transport/httpserver"
	"hotel-ops-go/internal/transport/httpserver/handler"
	"hotel-ops-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	devices := devicesdomain.NewService(devicesrepo.NewPostgres(dbConn))
	bookings := bookingsdomain.NewService(bookingsrepo.NewPostgres(dbConn))
	attendance := attendancedomain.NewService(attendancerepo.NewPostgres(dbConn))
	tasks := tasksdomain.NewService(tasksrepo.NewPostgres(dbConn))
	leave := leavedomain.NewService(leaverepo.NewPostgres(dbConn))
	inventory := inventorydomain.NewService(inventoryrepo.NewPostgres(dbConn))

	syncLog := synclogrepo.NewPostgres(dbConn)
	snapshots := snapshotrepo.NewPostgres(dbConn)
	versions := inmemory.NewDataVersionCache(snapshots, cfg.Sync.VersionCacheTTL)

	registry := syncdomain.NewRegistry(
		syncdomain.NewBookingHandler(bookings),
		syncdomain.NewAttendanceHandler(attendance),
		syncdomain.NewTaskHandler(tasks),
		syncdomain.NewLeaveHandler(leave),
		syncdomain.NewInventoryHandler(inventory),
	)

	syncService := syncdomain.NewService(syncrepo.NewPostgres(dbConn), registry, devices, syncLog, versions, cfg.Sync.MaxBatchOperations)
	statusReporter := syncdomain.NewStatusReporter(devices, syncLog, versions)
	resolver := syncdomain.NewResolver(registry, versions)
	snapshotService := snapshotdomain.NewService(snapshots, devices, syncLog)

	handlers := handler.New(syncService, statusReporter, resolver, snapshotService, devices, log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, log)

	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
