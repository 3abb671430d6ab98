// Package daemon assembles the running service: database, session storage,
// seeding and the web server.
package daemon

import (
	"fmt"

	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/config"
	"github.com/siga-admin/siga/internal/db/dsn"
	"github.com/siga-admin/siga/internal/db/models"
	"github.com/siga-admin/siga/internal/web"
	"github.com/siga-admin/siga/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go func() {
		if err := d.webService.Start(addr); err != nil {
			log.Fatal().Err(err).Msg("web service stopped unexpectedly")
		}
	}()

	d.webService.WaitShutdown()

	return nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	var dbDriver gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		dbDriver = gormmysql.Open(dsn.Create(cfg))
	case config.EnginePostgres:
		dbDriver = gormpostgres.Open(dsn.Create(cfg))
	default:
		log.Fatal().Err(config.ErrUnknownGormEngine).Str("engine", cfg.DB.GormEngine).Msg("")
		return nil
	}

	// TranslateError lets controllers match gorm.ErrDuplicatedKey across engines.
	db, err := gorm.Open(dbDriver, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.Unit{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.RoleAssignment{},
		&models.User{},
		&models.Vehicle{},
		&models.MaintenanceType{},
		&models.MaintenanceRecord{},
		&models.Appointment{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	session.Init(sessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}

// sessionStorage opens the fiber storage backend matching the gorm engine so
// sessions live next to the domain data.
func sessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == config.EnginePostgres {
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}
