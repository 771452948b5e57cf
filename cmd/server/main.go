package main

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/wattshare/energy-exchange/cmd/httpserver"
	"github.com/wattshare/energy-exchange/internal/middleware"
	"github.com/wattshare/energy-exchange/internal/orderrepo"
	"github.com/wattshare/energy-exchange/internal/sweeper"
	"github.com/wattshare/energy-exchange/pkg/configpkg"
	"github.com/wattshare/energy-exchange/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	if err := runMigrations(config.MigrationsURL, config.DBSource, logger); err != nil {
		logger.Fatal().Err(err).Msg("cannot run db migrations")
	}

	orderRepo := orderrepo.NewRepoPGS(conn)

	sweep, err := sweeper.New(orderRepo, config.SweepInterval, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create expiry sweeper")
	}

	sweep.Start()
	defer sweep.Stop()

	server, err := httpserver.New(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func runMigrations(sourceURL, dbSource string, logger zerolog.Logger) error {
	m, err := migrate.New(sourceURL, dbSource)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	logger.Info().Msg("db migrated")

	return nil
}
