package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/automoto/hitscan-mp/arena"
	"github.com/automoto/hitscan-mp/combat"
	"github.com/automoto/hitscan-mp/config"
	"github.com/automoto/hitscan-mp/events"
	"github.com/automoto/hitscan-mp/logging"
	"github.com/automoto/hitscan-mp/replication"
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/automoto/hitscan-mp/shared/netconfig"
	"github.com/automoto/hitscan-mp/storage"
	"github.com/automoto/hitscan-mp/tags"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/rs/zerolog"
	"github.com/yohamta/donburi"
)

// Options configures a Server.
type Options struct {
	Name     string
	Version  string // required client version, empty accepts any
	TickRate int
	Level    string
	Arena    *arena.Arena
	Journal  *storage.Journal // optional
	Logger   zerolog.Logger
}

// Server is the authority. Every simulation field below is owned by the
// tick goroutine; transport callbacks only enqueue commands.
type Server struct {
	name    string
	version string
	level   string

	world     donburi.World
	loop      *GameLoop
	transport *transports.WsServerTransport
	logger    zerolog.Logger
	bus       *events.Bus
	bridge    *replication.Bridge
	arena     *arena.Arena
	mode      *GameMode
	journal   *storage.Journal

	actors         map[netconfig.NetID]*actorState
	weapons        map[netconfig.NetID]*combat.Weapon
	controllers    map[netconfig.ControllerID]*controller
	peers          map[string]*controller
	lifespans      map[netconfig.NetID]time.Duration
	timers         []timer
	timerSeq       uint64
	spawnCursor    int
	nextController netconfig.ControllerID
	now            time.Duration

	mu       sync.Mutex
	commands []func()
	players  int
}

// NewServer creates a server for one arena.
func NewServer(opts Options) (*Server, error) {
	if opts.Arena == nil {
		return nil, fmt.Errorf("server needs an arena")
	}
	if opts.TickRate <= 0 {
		return nil, fmt.Errorf("invalid tick rate %d", opts.TickRate)
	}

	logger := logging.Component(opts.Logger, "server")
	bus, err := events.New(logging.NewBusLogger(logging.Component(opts.Logger, "events")))
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}
	bridge, err := replication.NewBridge(logging.Component(opts.Logger, "replication"))
	if err != nil {
		return nil, fmt.Errorf("create replication bridge: %w", err)
	}

	world := donburi.NewWorld()

	s := &Server{
		name:        opts.Name,
		version:     opts.Version,
		level:       opts.Level,
		world:       world,
		logger:      logger,
		bus:         bus,
		bridge:      bridge,
		arena:       opts.Arena,
		journal:     opts.Journal,
		actors:      make(map[netconfig.NetID]*actorState),
		weapons:     make(map[netconfig.NetID]*combat.Weapon),
		controllers: make(map[netconfig.ControllerID]*controller),
		peers:       make(map[string]*controller),
		lifespans:   make(map[netconfig.NetID]time.Duration),
	}
	s.loop = NewGameLoop(s, opts.TickRate)

	// Set up the world for esync
	srvsync.UseEsync(world)

	s.mode = newGameMode(s)
	s.bus.Subscribe(events.Died, s.onDied)
	if s.journal != nil {
		s.attachJournal()
	}

	return s, nil
}

// Start runs the game loop and serves websocket clients on port. It blocks
// until the transport stops.
func (s *Server) Start(port uint) error {
	s.setupRouterCallbacks()

	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop halts the game loop and closes the current match.
func (s *Server) Stop() {
	s.loop.Stop()
	s.mode.Close()
	s.bus.Close()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		s.logger.Info().Str("client", client.Id()).Msg("client connected")
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.Disconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRequest) { s.HandleMessage(client, msg) })
	router.On(func(client *router.NetworkClient, msg messages.RequestMove) { s.HandleMessage(client, msg) })
	router.On(func(client *router.NetworkClient, msg messages.RequestSetRunning) { s.HandleMessage(client, msg) })
	router.On(func(client *router.NetworkClient, msg messages.RequestEquipWeapon) { s.HandleMessage(client, msg) })
	router.On(func(client *router.NetworkClient, msg messages.RequestStartFire) { s.HandleMessage(client, msg) })
	router.On(func(client *router.NetworkClient, msg messages.RequestStopFire) { s.HandleMessage(client, msg) })
	router.On(func(client *router.NetworkClient, msg messages.RequestReload) { s.HandleMessage(client, msg) })

	router.OnError(func(client *router.NetworkClient, err error) {
		s.logger.Warn().Err(err).Str("client", client.Id()).Msg("client error")
	})
}

// HandleMessage queues a client message for the next tick. The router calls
// it for websocket peers; in-process peers call it directly. Safe from any
// goroutine.
func (s *Server) HandleMessage(peer Peer, msg any) {
	switch m := msg.(type) {
	case messages.JoinRequest:
		s.enqueue(func() { s.onJoin(peer, m) })
	case messages.RequestMove:
		s.enqueue(func() { s.onMove(peer, m) })
	case messages.RequestSetRunning:
		s.enqueue(func() { s.onRequest(peer, m.ActorID, m) })
	case messages.RequestEquipWeapon:
		s.enqueue(func() { s.onRequest(peer, m.ActorID, m) })
	case messages.RequestStartFire:
		s.enqueue(func() { s.onRequest(peer, m.ActorID, m) })
	case messages.RequestStopFire:
		s.enqueue(func() { s.onRequest(peer, m.ActorID, m) })
	case messages.RequestReload:
		s.enqueue(func() { s.onRequest(peer, m.ActorID, m) })
	default:
		s.logger.Debug().Str("client", peer.Id()).Msgf("%T unhandled", msg)
	}
}

// Disconnect queues the removal of peer's player.
func (s *Server) Disconnect(peer Peer, err error) {
	s.enqueue(func() { s.onDisconnect(peer, err) })
}

// World returns the ECS world
func (s *Server) World() donburi.World {
	return s.world
}

// Bus returns the gameplay event bus.
func (s *Server) Bus() *events.Bus {
	return s.bus
}

// PlayerCount returns the number of joined players. Safe from any goroutine.
func (s *Server) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players
}

// onDied frees the victim's controller and schedules its respawn.
func (s *Server) onDied(e events.Event) {
	ev, ok := e.Payload.(combat.DeathEvent)
	if !ok {
		return
	}
	if st, ok := s.actors[ev.Actor]; ok && s.world.Valid(st.entity) {
		s.world.Entry(st.entity).AddComponent(tags.Dying)
	}

	c, ok := s.controllers[ev.Victim]
	if !ok || c.actor != ev.Actor {
		return
	}
	s.setControllerActor(c, 0)

	id := c.id
	s.after(config.Server.RespawnDelay, func() {
		c, ok := s.controllers[id]
		if !ok || c.actor != 0 {
			return
		}
		s.spawnActor(c)
	})
}
