package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	tickInterval = 1 * time.Second
	pingInterval = 30 * time.Second
)

type lobbyAddRequest struct {
	room Room
}

// registry owns the lobby map. Only the RegistryActor goroutine touches it;
// the exported methods hand requests over via channels.
type registry struct {
	lobbies map[string]Room

	idGenerator   UniqueIdGenerator
	tickerCreator PeriodicTickerChannelCreator
	logger        zerolog.Logger

	addRequests    chan lobbyAddRequest
	joinRequests   chan registryJoinRequest
	removeRequests chan string
}

func NewRegistry(idGenerator UniqueIdGenerator, tickerCreator PeriodicTickerChannelCreator, logger zerolog.Logger) *registry {
	return &registry{
		lobbies:        make(map[string]Room),
		idGenerator:    idGenerator,
		tickerCreator:  tickerCreator,
		logger:         logger,
		addRequests:    make(chan lobbyAddRequest, 16),
		joinRequests:   make(chan registryJoinRequest, 64),
		removeRequests: make(chan string, 64),
	}
}

// RegistryActor runs the lobby bookkeeping loop. It closes started once it is
// draining requests, so callers can block until the registry is live.
func (reg *registry) RegistryActor(started chan struct{}) {
	ticks := reg.tickerCreator.Create(tickInterval)
	pings := reg.tickerCreator.Create(pingInterval)
	close(started)

	for {
		select {
		case req := <-reg.addRequests:
			reg.handleAddAndRunLobby(req.room)
		case jreq := <-reg.joinRequests:
			reg.handleJoinRequest(jreq)
		case id := <-reg.removeRequests:
			reg.handleRemoveLobby(id)
		case now := <-ticks:
			for _, room := range reg.lobbies {
				room.Tick(now)
			}
		case <-pings:
			for _, room := range reg.lobbies {
				room.PingPlayers()
			}
		}
	}
}

func (reg *registry) RequestAddAndRunLobby(ctx context.Context, r Room) {
	select {
	case reg.addRequests <- lobbyAddRequest{room: r}:
	case <-ctx.Done():
	}
}

func (reg *registry) ForwardJoinRequest(ctx context.Context, jreq registryJoinRequest) {
	select {
	case reg.joinRequests <- jreq:
	case <-ctx.Done():
		jreq.errChan <- ctx.Err()
	}
}

// RemoveLobby is called from lobby goroutines; it only enqueues.
func (reg *registry) RemoveLobby(id string) {
	reg.removeRequests <- id
}

func (reg *registry) handleAddAndRunLobby(r Room) {
	id := reg.idGenerator.Generate()
	r.SetId(id)
	r.SetRegistry(reg)
	reg.lobbies[id] = r
	reg.logger.Info().Str("lobby", id).Int("lobbies", len(reg.lobbies)).Msg("lobby created")
	go r.GameLoop()
}

func (reg *registry) handleJoinRequest(jreq registryJoinRequest) {
	room, ok := reg.lobbies[jreq.lobbyId]
	if !ok {
		jreq.errChan <- ErrLobbyNotFound
		return
	}
	room.RequestJoin(roomJoinRequest{player: jreq.player, errChan: jreq.errChan})
}

func (reg *registry) handleRemoveLobby(id string) {
	room, ok := reg.lobbies[id]
	if !ok {
		return
	}
	delete(reg.lobbies, id)
	room.CloseAndRelease()
	reg.idGenerator.Dispose(id)
	reg.logger.Info().Str("lobby", id).Int("lobbies", len(reg.lobbies)).Msg("lobby removed")
}
