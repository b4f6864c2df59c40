package game

import (
	"context"
	"time"
)

// NetworkSession is the transport handed to a player's pumps; the websocket
// wrapper in handlers.go satisfies it, tests use a mock.
type NetworkSession interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// Player is one connected client: an identity and a mailbox. Send and Ping
// only enqueue and never block, so the lobby loop can call them freely.
type Player interface {
	ID() string
	Username() string
	Send(data []byte) error
	Ping() error
	SetRoom(r Room)
	CancelAndRelease()
}

// Room is a single lobby instance. All its state is owned by the goroutine
// running GameLoop; the other methods only hand work to that goroutine.
type Room interface {
	RequestJoin(jreq roomJoinRequest)
	Send(ctx context.Context, e clientPacketEnvelope)
	RemoveMe(ctx context.Context, p Player)
	Tick(now time.Time)
	PingPlayers()
	GameLoop()
	CloseAndRelease()
	SetId(id string)
	SetRegistry(reg Registry)
}

// Registry owns the set of live lobbies.
type Registry interface {
	RequestAddAndRunLobby(ctx context.Context, r Room)
	ForwardJoinRequest(ctx context.Context, jreq registryJoinRequest)
	RemoveLobby(id string)
}

type UniqueIdGenerator interface {
	Generate() string
	Dispose(id string)
}

type PeriodicTickerChannelCreator interface {
	Create(d time.Duration) <-chan time.Time
}

// RandomSource drives role shuffling; tests inject a scripted one.
type RandomSource interface {
	Intn(n int) int
}

// Rewriter is the external text-rewrite assist consulted by the chat relay.
// It never touches lobby or voting state.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

type roomJoinRequest struct {
	player  Player
	errChan chan error
}

type registryJoinRequest struct {
	lobbyId string
	player  Player
	errChan chan error
}

type clientPacketEnvelope struct {
	packet ClientPacket
	from   Player
}

type dataSendTask struct {
	to   Player
	data []byte
}

type pingSendTask struct {
	to Player
}

// Rules are the per-process game constants, loaded from config.
type Rules struct {
	MinPlayers     int
	MaxPlayers     int
	DayDuration    time.Duration
	VotingDuration time.Duration
	NightDuration  time.Duration
}
