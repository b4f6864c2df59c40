package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type seat struct {
	player Player
	name   string
	role   Role
	alive  bool
}

// room is one lobby and its whole game state. Everything below the channel
// block is owned by the GameLoop goroutine.
type room struct {
	id      string
	creator string // username of the current creator
	rules   Rules
	logger  zerolog.Logger

	registry Registry
	rng      RandomSource
	rewriter Rewriter

	phase    Phase
	started  bool
	nextTick time.Time
	winner   Winner

	seats      []*seat // join order
	ballots    ballotBox
	sessionSeq int

	inbox          chan clientPacketEnvelope
	ticks          chan time.Time
	pingPlayers    chan struct{}
	joinRequests   chan roomJoinRequest
	removeRequests chan Player
	done           chan struct{}
	closeOnce      sync.Once

	dataSendTasks []dataSendTask
	pingSendTasks []pingSendTask
}

func NewRoom(creator Player, rules Rules, rng RandomSource, rewriter Rewriter, logger zerolog.Logger) *room {
	r := &room{
		creator:        creator.Username(),
		rules:          rules,
		logger:         logger,
		rng:            rng,
		rewriter:       rewriter,
		phase:          PhaseLobby,
		ballots:        newBallotBox(),
		inbox:          make(chan clientPacketEnvelope, 1024),
		ticks:          make(chan time.Time, 24),
		pingPlayers:    make(chan struct{}, 4),
		joinRequests:   make(chan roomJoinRequest, 8),
		removeRequests: make(chan Player, 64),
		done:           make(chan struct{}),
		dataSendTasks:  make([]dataSendTask, 0),
		pingSendTasks:  make([]pingSendTask, 0),
	}
	r.seats = append(r.seats, &seat{player: creator, name: creator.Username(), alive: true})
	creator.SetRoom(r)
	return r
}

func (r *room) SetId(id string) {
	r.id = id
	r.logger = r.logger.With().Str("lobby", id).Logger()
}

func (r *room) SetRegistry(reg Registry) {
	r.registry = reg
}

func (r *room) RequestJoin(jreq roomJoinRequest) {
	select {
	case r.joinRequests <- jreq:
	case <-r.done:
		jreq.errChan <- ErrLobbyNotFound
	}
}

func (r *room) Send(ctx context.Context, e clientPacketEnvelope) {
	select {
	case r.inbox <- e:
	case <-ctx.Done():
	case <-r.done:
	}
}

// RemoveMe is safe to call with an already-cancelled context; the buffered
// attempt runs first so a disconnecting player is never silently kept.
func (r *room) RemoveMe(ctx context.Context, p Player) {
	select {
	case r.removeRequests <- p:
		return
	default:
	}
	select {
	case r.removeRequests <- p:
	case <-ctx.Done():
	case <-r.done:
	}
}

func (r *room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

func (r *room) PingPlayers() {
	select {
	case r.pingPlayers <- struct{}{}:
	default:
	}
}

func (r *room) CloseAndRelease() {
	r.closeOnce.Do(func() { close(r.done) })
}
