package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const playerSendBuffer = 256

// player is one connected client. ReadPump and WritePump each run on their own
// goroutine; everything else only enqueues.
type player struct {
	id       string
	username string
	logger   zerolog.Logger

	room      Room
	roomMutex sync.RWMutex

	inbox    chan []byte
	pingChan chan struct{}
	limiter  *rate.Limiter

	ctx       context.Context
	cancelCtx context.CancelFunc
}

func NewPlayer(id, username string, logger zerolog.Logger) *player {
	ctx, cancel := context.WithCancel(context.Background())
	return &player{
		id:        id,
		username:  username,
		logger:    logger.With().Str("player", username).Logger(),
		inbox:     make(chan []byte, playerSendBuffer),
		pingChan:  make(chan struct{}, 1),
		limiter:   rate.NewLimiter(10, 20),
		ctx:       ctx,
		cancelCtx: cancel,
	}
}

func (p *player) ID() string       { return p.id }
func (p *player) Username() string { return p.username }

func (p *player) SetRoom(r Room) {
	p.roomMutex.Lock()
	defer p.roomMutex.Unlock()
	p.room = r
}

func (p *player) getRoom() Room {
	p.roomMutex.RLock()
	defer p.roomMutex.RUnlock()
	return p.room
}

// Send enqueues data for the write pump. It never blocks: a full inbox means
// the client stopped draining and the frame is dropped.
func (p *player) Send(data []byte) error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.inbox <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (p *player) Ping() error {
	select {
	case p.pingChan <- struct{}{}:
	default:
	}
	return nil
}

// CancelAndRelease tears the pumps down. Safe to call more than once.
func (p *player) CancelAndRelease() {
	p.cancelCtx()
}

// ReadPump decodes inbound frames and forwards them to the player's room.
// It owns the disconnect path: when the read side dies for any reason, the
// room is asked to drop this player.
func (p *player) ReadPump(socket NetworkSession) {
	defer func() {
		p.cancelCtx()
		if room := p.getRoom(); room != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			room.RemoveMe(ctx, p)
		}
	}()

	for {
		data, err := socket.Read()
		if err != nil {
			p.logger.Debug().Err(err).Msg("read pump closing")
			return
		}
		if !p.limiter.Allow() {
			p.logger.Warn().Msg("rate limit exceeded, dropping packet")
			continue
		}
		var packet ClientPacket
		if err := json.Unmarshal(data, &packet); err != nil {
			p.logger.Debug().Err(err).Msg("malformed packet dropped")
			continue
		}
		if room := p.getRoom(); room != nil {
			room.Send(p.ctx, clientPacketEnvelope{packet: packet, from: p})
		}
	}
}

// WritePump drains the outbox onto the socket. Closing the socket on exit is
// what unblocks a ReadPump stuck in Read.
func (p *player) WritePump(socket NetworkSession) {
	defer socket.Close("")

	for {
		select {
		case <-p.ctx.Done():
			p.drainInbox(socket)
			return
		case data := <-p.inbox:
			if err := socket.Write(data); err != nil {
				p.logger.Debug().Err(err).Msg("write pump closing")
				p.cancelCtx()
				return
			}
		case <-p.pingChan:
			if err := socket.Ping(); err != nil {
				p.logger.Debug().Err(err).Msg("ping failed, write pump closing")
				p.cancelCtx()
				return
			}
		}
	}
}

// drainInbox flushes frames that were enqueued before the release, so a
// game-over packet still reaches the socket.
func (p *player) drainInbox(socket NetworkSession) {
	for {
		select {
		case data := <-p.inbox:
			if err := socket.Write(data); err != nil {
				return
			}
		default:
			return
		}
	}
}
