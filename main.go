package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/hitscan-mp/arena"
	"github.com/automoto/hitscan-mp/client"
	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/logging"
	"github.com/automoto/hitscan-mp/network"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/protocol"
	"github.com/rs/zerolog"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing "+config.FileName)
	addr := flag.String("addr", "", "Server address host:port (default from settings or config)")
	name := flag.String("name", "", "Player name (default from settings)")
	version := flag.String("version", "", "Client version sent with the join request")
	bot := flag.Bool("bot", false, "Drive the player with scripted input")
	flag.Parse()

	cfgErr := config.Load(*configDir)
	log := logging.New(config.Client.LogLevel, nil)
	switch {
	case errors.Is(cfgErr, config.ErrConfigNotFound):
		log.Info().Str("dir", *configDir).Msg("no config file, using defaults")
	case cfgErr != nil:
		log.Fatal().Err(cfgErr).Msg("failed to load config")
	}

	// Saved settings are optional; a headless box may have no home dir.
	settings := client.DefaultSettings()
	store, err := client.OpenStore(config.Client.AppName)
	if err != nil {
		log.Warn().Err(err).Msg("settings unavailable")
	} else if settings, err = client.LoadSettings(store); err != nil {
		log.Warn().Err(err).Msg("could not load settings")
	}
	if *name != "" {
		settings.PlayerName = *name
	}
	switch {
	case *addr != "":
		settings.ServerAddr = *addr
	case settings.ServerAddr == "":
		settings.ServerAddr = config.Client.ServerAddr
	}

	// Register network components for client-side deserialization
	if err := protocol.RegisterComponents(); err != nil {
		log.Fatal().Err(err).Msg("failed to register components")
	}

	conn := network.NewClient(logging.Component(log, "network"))
	conn.Connect(settings.ServerAddr, *version, settings.PlayerName)

	joined, err := waitForJoin(conn, config.Client.JoinTimeout)
	if err != nil {
		log.Fatal().Err(err).Str("addr", settings.ServerAddr).Msg("could not join")
	}

	level, err := arena.Load(config.Server.AssetsDir, joined.Level, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load level")
	}

	cosmetics := client.NewCosmetics(logging.Component(log, "cosmetics"), config.Client.DeathAnimation)
	session, err := client.NewSession(client.Options{
		Arena:     level,
		Caller:    conn,
		Cosmetics: cosmetics,
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session")
	}
	watch(session, log)

	var driver *client.Bot
	if *bot {
		driver = client.NewBot(config.Bot)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	dt := time.Second / time.Duration(config.Client.TickRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	log.Info().
		Str("server", joined.ServerName).
		Str("level", joined.Level).
		Str("name", settings.PlayerName).
		Bool("bot", *bot).
		Msg("joined game")

	for {
		select {
		case <-sigChan:
			log.Info().Msg("leaving game")
			if a, ok := session.LocalActor(); ok {
				settings.LastSlot = a.ActiveWeaponSlot()
			}
			if store != nil {
				if err := client.SaveSettings(store, settings); err != nil {
					log.Warn().Err(err).Msg("could not save settings")
				}
			}
			conn.Disconnect()
			session.Close()
			return
		case <-ticker.C:
			if conn.State() != network.StateJoinedGame {
				log.Fatal().Err(conn.LastError()).Msg("connection lost")
			}
			for _, msg := range conn.Drain() {
				session.Handle(msg)
			}
			if snap := conn.LatestSnapshot(); snap != nil {
				session.ApplySnapshot(*snap)
			}
			if driver != nil {
				driver.Drive(session, dt)
			}
			session.Tick(dt)
		}
	}
}

func waitForJoin(conn *network.Client, timeout time.Duration) (messages.JoinAccepted, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if acc, ok := conn.Joined(); ok {
			return acc, nil
		}
		if conn.State() == network.StateError {
			return messages.JoinAccepted{}, conn.LastError()
		}
		time.Sleep(50 * time.Millisecond)
	}
	return messages.JoinAccepted{}, errors.New("timed out waiting for join")
}

// watch logs the gameplay events a HUD would show.
func watch(s *client.Session, log zerolog.Logger) {
	bus := s.Bus()
	bus.Subscribe(events.HealthChanged, func(e events.Event) {
		ev := e.Payload.(combat.HealthEvent)
		if ev.Actor == s.LocalID() {
			log.Info().Int32("health", ev.New).Msg("health")
		}
	})
	bus.Subscribe(events.ReceivedDamage, func(e events.Event) {
		ev := e.Payload.(messages.ClientNotifyReceivedDamage)
		log.Info().Floats64("from", ev.SourceLocation[:]).Msg("took damage")
	})
	bus.Subscribe(events.WeaponHit, func(events.Event) {
		log.Info().Msg("hit confirmed")
	})
	bus.Subscribe(events.MatchStateChanged, func(e events.Event) {
		kills, deaths := s.Scores()
		log.Info().Interface("state", e.Payload).Interface("kills", kills).Interface("deaths", deaths).Msg("match state")
	})
}
