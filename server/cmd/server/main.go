package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/hitscan-mp/arena"
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/logging"
	"github.com/automoto/hitscan-mp/server/core"
	"github.com/automoto/hitscan-mp/shared/protocol"
	"github.com/automoto/hitscan-mp/storage"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing "+config.FileName)
	port := flag.Uint("port", config.Server.Port, "Server port")
	tickRate := flag.Int("tickrate", config.Server.TickRate, "Server tick rate (updates per second)")
	name := flag.String("name", config.Server.Name, "Server display name")
	level := flag.String("level", config.Server.Level, "Level to load from the assets directory")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	flag.Parse()

	cfgErr := config.Load(*configDir)

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			config.Server.Port = *port
		case "tickrate":
			config.Server.TickRate = *tickRate
		case "name":
			config.Server.Name = *name
		case "level":
			config.Server.Level = *level
		}
	})

	log := logging.New(config.Server.LogLevel, nil)
	switch {
	case errors.Is(cfgErr, config.ErrConfigNotFound):
		log.Info().Str("dir", *configDir).Msg("no config file, using defaults")
	case cfgErr != nil:
		log.Fatal().Err(cfgErr).Msg("failed to load config")
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatal().Err(err).Msg("failed to register components")
	}

	levelArena, err := arena.Load(config.Server.AssetsDir, config.Server.Level, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load level")
	}

	var journal *storage.Journal
	if config.Storage.Enabled {
		journal, err = storage.Open(config.Storage, logging.Component(log, "storage"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open journal")
		}
	}

	server, err := core.NewServer(core.Options{
		Name:     config.Server.Name,
		Version:  *version,
		TickRate: config.Server.TickRate,
		Level:    config.Server.Level,
		Arena:    levelArena,
		Journal:  journal,
		Logger:   log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutting down server")
		server.Stop()
		if journal != nil {
			if err := journal.Close(); err != nil {
				log.Error().Err(err).Msg("journal close failed")
			}
		}
		os.Exit(0)
	}()

	log.Info().
		Str("name", config.Server.Name).
		Uint("port", config.Server.Port).
		Int("tickRate", config.Server.TickRate).
		Str("level", config.Server.Level).
		Str("version", *version).
		Msg("starting server")
	if err := server.Start(config.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
