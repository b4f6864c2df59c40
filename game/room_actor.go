package game

import (
	"context"
	"fmt"
	"time"
)

// GameLoop drains the room's channels one event at a time: this is the single
// serialization point for joins, votes, removals and phase transitions.
func (r *room) GameLoop() {
	r.broadcastPacket(MakePacketLobbyCreated(r.id, r.playerInfos()))
	r.flushSendTasks()

	for {
		select {
		case <-r.done:
			return
		case e := <-r.inbox:
			r.handleEnvelope(e)
		case jreq := <-r.joinRequests:
			r.handleJoinRequest(jreq)
		case p := <-r.removeRequests:
			r.handleRemovePlayer(p)
		case now := <-r.ticks:
			r.handleTick(now)
		case <-r.pingPlayers:
			r.handlePingPlayers()
		}
		r.flushSendTasks()
		if r.phase == PhaseEnded {
			r.releasePlayers()
			return
		}
	}
}

func (r *room) handleEnvelope(e clientPacketEnvelope) {
	s := r.seatFor(e.from)
	if s == nil {
		return
	}
	switch e.packet.Type {
	case ActionStartGame:
		r.handleStartGame(s)
	case ActionStartVote:
		r.handleStartVote(s)
	case ActionVote:
		switch r.phase {
		case PhaseVoting:
			r.handleCastVote(VoteVillage, s, e.packet.Target)
		case PhaseNight:
			r.handleCastVote(VoteMafia, s, e.packet.Target)
		default:
			r.logger.Debug().Str("player", s.name).Msg("vote outside a voting window dropped")
		}
	case ActionDoctorVote:
		r.handleCastVote(VoteDoctor, s, e.packet.Target)
	case ActionDetectiveVote:
		r.handleCastVote(VoteDetective, s, e.packet.Target)
	case ActionChat:
		r.handleChat(s, e.packet.Text)
	case ActionLeave:
		r.handleRemovePlayer(e.from)
	default:
		r.logger.Debug().Str("player", s.name).Str("type", e.packet.Type).Msg("unknown packet dropped")
	}
}

func (r *room) handleJoinRequest(jreq roomJoinRequest) {
	p := jreq.player
	if r.started {
		jreq.errChan <- ErrGameStarted
		return
	}

	// A reconnect under the same name kicks the stale seat, so the join
	// must be counted before the capacity check.
	stale := r.seatOf(p.Username())
	if stale == nil && len(r.seats) >= r.rules.MaxPlayers {
		jreq.errChan <- ErrLobbyFull
		return
	}

	r.seats = append(r.seats, &seat{player: p, name: p.Username(), alive: true})
	p.SetRoom(r)
	jreq.errChan <- nil
	if stale != nil {
		r.logger.Info().Str("player", stale.name).Msg("kicking stale connection for rejoining player")
		r.handleRemovePlayer(stale.player)
		return
	}

	r.logger.Info().Str("player", p.Username()).Int("players", len(r.seats)).Msg("player joined")
	r.broadcastPacket(MakePacketLobbyUpdate(r.id, r.playerInfos()))
	if len(r.seats) == r.rules.MinPlayers {
		if creator := r.seatOf(r.creator); creator != nil {
			r.sendTo(creator.player, MakePacketLobbyReady(r.id))
		}
	}
}

func (r *room) handleRemovePlayer(p Player) {
	idx := -1
	for i, s := range r.seats {
		if s.player == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return // stale removal, e.g. after a reconnect kick
	}

	s := r.seats[idx]
	r.seats = append(r.seats[:idx], r.seats[idx+1:]...)
	r.ballots.DropPlayer(s.name)
	p.CancelAndRelease()
	r.logger.Info().Str("player", s.name).Int("players", len(r.seats)).Msg("player removed")

	if len(r.seats) == 0 {
		r.destroy()
		return
	}
	// A rejoin kick removes the stale seat while a fresh seat with the
	// same name stays; creatorship must not move in that case.
	if r.creator == s.name && r.seatOf(s.name) == nil {
		r.creator = r.seats[0].name
		r.logger.Info().Str("creator", r.creator).Msg("creator reassigned")
	}
	r.broadcastPacket(MakePacketLobbyUpdate(r.id, r.playerInfos()))

	if r.started && r.winner == WinnerNone {
		if w := r.currentWinner(); w != WinnerNone {
			r.broadcastPacket(MakePacketVotingConcluded("", w))
			r.endGame(w)
			return
		}
		switch r.phase {
		case PhaseVoting:
			r.checkVillageProgress(time.Now())
		case PhaseNight:
			r.checkNightProgress(time.Now())
		}
	}
}

func (r *room) canStart() bool {
	return !r.started && len(r.seats) >= r.rules.MinPlayers
}

func (r *room) handleStartGame(s *seat) {
	if s.name != r.creator {
		r.sendTo(s.player, MakePacketError(ErrNotCreator.Error()))
		return
	}
	if r.started {
		r.sendTo(s.player, MakePacketError(ErrGameStarted.Error()))
		return
	}
	if !r.canStart() {
		r.sendTo(s.player, MakePacketError(ErrNotEnoughPlayers.Error()))
		return
	}
	if err := r.assignRoles(); err != nil {
		r.sendTo(s.player, MakePacketError(err.Error()))
		return
	}

	r.started = true
	r.logger.Info().Int("players", len(r.seats)).Msg("game started")
	for _, seat := range r.seats {
		r.sendTo(seat.player, MakePacketRoleAssigned(seat.role))
	}
	r.enterDay(time.Now())
}

// assignRoles deals the role multiset for the current table and applies a
// Fisher–Yates shuffle driven by the injected random source.
func (r *room) assignRoles() error {
	roles, err := DetermineRoles(len(r.seats))
	if err != nil {
		return err
	}
	for i := len(roles) - 1; i > 0; i-- {
		j := r.rng.Intn(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}
	for i, s := range r.seats {
		s.role = roles[i]
		s.alive = true
	}
	return nil
}

func (r *room) handleChat(s *seat, text string) {
	var recipients []Player
	switch {
	case !s.alive:
		// Ghost chat: the eliminated talk among themselves.
		for _, other := range r.seats {
			if other != s && !other.alive {
				recipients = append(recipients, other.player)
			}
		}
	case r.phase == PhaseNight:
		if s.role != RoleMafia {
			return // night chat is mafia-only
		}
		for _, other := range r.seats {
			if other != s && other.alive && other.role == RoleMafia {
				recipients = append(recipients, other.player)
			}
		}
	default:
		for _, other := range r.seats {
			if other != s && other.alive {
				recipients = append(recipients, other.player)
			}
		}
	}
	if len(recipients) == 0 {
		return
	}
	r.relayChat(s.name, text, recipients)
}

// relayChat consults the rewrite assist off the game loop so a slow upstream
// can never stall a phase transition. The recipient snapshot is fixed here;
// Send is safe from any goroutine.
func (r *room) relayChat(from, text string, recipients []Player) {
	rewriter := r.rewriter
	logger := r.logger
	go func() {
		out := text
		if rewriter != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			rewritten, err := rewriter.Rewrite(ctx, text)
			if err != nil {
				logger.Debug().Err(err).Msg("rewrite assist unavailable, relaying original text")
			} else {
				out = rewritten
			}
		}
		packet := MakePacketChat(from, out)
		for _, p := range recipients {
			_ = p.Send(packet)
		}
	}()
}

func (r *room) handlePingPlayers() {
	for _, s := range r.seats {
		r.pingSendTasks = append(r.pingSendTasks, pingSendTask{to: s.player})
	}
}

func (r *room) seatOf(name string) *seat {
	for _, s := range r.seats {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (r *room) seatFor(p Player) *seat {
	for _, s := range r.seats {
		if s.player == p {
			return s
		}
	}
	return nil
}

func (r *room) playerInfos() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.seats))
	for _, s := range r.seats {
		infos = append(infos, PlayerInfo{Name: s.name, Alive: s.alive, Creator: s.name == r.creator})
	}
	return infos
}

func (r *room) sendTo(p Player, data []byte) {
	r.dataSendTasks = append(r.dataSendTasks, dataSendTask{to: p, data: data})
}

func (r *room) broadcastPacket(data []byte) {
	for _, s := range r.seats {
		r.sendTo(s.player, data)
	}
}

func (r *room) flushSendTasks() {
	for _, task := range r.dataSendTasks {
		if err := task.to.Send(task.data); err != nil {
			r.logger.Warn().Str("player", task.to.Username()).Err(err).Msg("dropping outbound packet")
		}
	}
	for _, task := range r.pingSendTasks {
		_ = task.to.Ping()
	}
	r.dataSendTasks = r.dataSendTasks[:0]
	r.pingSendTasks = r.pingSendTasks[:0]
}

func (r *room) releasePlayers() {
	for _, s := range r.seats {
		s.player.CancelAndRelease()
	}
	r.seats = nil
}

func (r *room) destroy() {
	if r.registry != nil {
		r.registry.RemoveLobby(r.id)
	}
}

func (r *room) nextSessionId() string {
	r.sessionSeq++
	return fmt.Sprintf("%s-%d", r.id, r.sessionSeq)
}

func (r *room) currentWinner() Winner {
	mafia, others := 0, 0
	for _, s := range r.seats {
		if !s.alive {
			continue
		}
		if s.role == RoleMafia {
			mafia++
		} else {
			others++
		}
	}
	return EvaluateWinner(mafia, others)
}
