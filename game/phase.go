package game

import "time"

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseDay
	PhaseVoting
	PhaseNight
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseDay:
		return "day"
	case PhaseVoting:
		return "voting"
	case PhaseNight:
		return "night"
	case PhaseEnded:
		return "ended"
	}
	return "lobby"
}

// handleTick advances the phase machine once the single pending deadline has
// passed. Early ticks are ignored, so the registry can fan them out freely.
func (r *room) handleTick(now time.Time) {
	if !r.started || r.phase == PhaseEnded {
		return
	}
	if now.Before(r.nextTick) {
		return
	}
	switch r.phase {
	case PhaseDay:
		r.enterVoting(now)
	case PhaseVoting:
		r.concludeVoting(now)
	case PhaseNight:
		r.concludeNight(now)
	}
}

func (r *room) enterDay(now time.Time) {
	r.phase = PhaseDay
	r.nextTick = now.Add(r.rules.DayDuration)
	r.logger.Info().Str("phase", r.phase.String()).Msg("phase changed")
	r.broadcastPacket(MakePacketPhaseChanged(PhaseDay, r.rules.DayDuration))
}

func (r *room) enterVoting(now time.Time) {
	r.phase = PhaseVoting
	r.nextTick = now.Add(r.rules.VotingDuration)
	r.logger.Info().Str("phase", r.phase.String()).Msg("phase changed")
	r.broadcastPacket(MakePacketPhaseChanged(PhaseVoting, r.rules.VotingDuration))

	session := r.ballots.Open(r.nextSessionId(), VoteVillage, r.alivePlayers(), r.alivePlayers())
	r.broadcastPacket(MakePacketVotingOpened(VoteVillage, session.ID, session.VoterNames()))
}

func (r *room) enterNight(now time.Time) {
	r.phase = PhaseNight
	r.nextTick = now.Add(r.rules.NightDuration)
	r.logger.Info().Str("phase", r.phase.String()).Msg("phase changed")
	r.broadcastPacket(MakePacketPhaseChanged(PhaseNight, r.rules.NightDuration))

	// Night sessions are private: only the pool learns a session exists.
	for _, kind := range []VoteKind{VoteMafia, VoteDoctor, VoteDetective} {
		voters := r.aliveByRole(nightRole(kind))
		if len(voters) == 0 {
			continue
		}
		session := r.ballots.Open(r.nextSessionId(), kind, voters, r.alivePlayers())
		packet := MakePacketVotingOpened(kind, session.ID, session.VoterNames())
		for _, name := range voters {
			if s := r.seatOf(name); s != nil {
				r.sendTo(s.player, packet)
			}
		}
	}
}

func nightRole(kind VoteKind) Role {
	switch kind {
	case VoteMafia:
		return RoleMafia
	case VoteDoctor:
		return RoleDoctor
	}
	return RoleDetective
}

// handleStartVote lets any living player cut the day short.
func (r *room) handleStartVote(s *seat) {
	if r.phase != PhaseDay || !s.alive {
		r.logger.Debug().Str("player", s.name).Msg("start_vote dropped")
		return
	}
	r.enterVoting(time.Now())
}

func (r *room) handleCastVote(kind VoteKind, s *seat, target string) {
	if !s.alive {
		return
	}
	if (kind == VoteVillage) != (r.phase == PhaseVoting) {
		r.logger.Debug().Str("player", s.name).Str("kind", kind.String()).Msg("vote in wrong phase dropped")
		return
	}
	session := r.ballots.ByKind(kind)
	if session == nil {
		r.logger.Debug().Str("player", s.name).Str("kind", kind.String()).Msg("vote without an open session dropped")
		return
	}
	if err := r.ballots.Cast(session.ID, s.name, target); err != nil {
		r.logger.Debug().Str("player", s.name).Str("kind", kind.String()).Err(err).Msg("vote rejected")
		return
	}
	r.logger.Debug().Str("player", s.name).Str("kind", kind.String()).Msg("vote cast")

	if kind == VoteDetective && session.Complete() && !session.Delivered {
		r.deliverInvestigation(session)
	}
	switch r.phase {
	case PhaseVoting:
		r.checkVillageProgress(time.Now())
	case PhaseNight:
		r.checkNightProgress(time.Now())
	}
}

// checkVillageProgress concludes the day vote early once every living voter
// has spoken.
func (r *room) checkVillageProgress(now time.Time) {
	session := r.ballots.ByKind(VoteVillage)
	if session != nil && session.Complete() {
		r.concludeVoting(now)
	}
}

func (r *room) checkNightProgress(now time.Time) {
	for _, session := range r.ballots.Sessions() {
		if !session.Complete() {
			return
		}
	}
	r.concludeNight(now)
}

func (r *room) concludeVoting(now time.Time) {
	var eliminated string
	if session := r.ballots.ByKind(VoteVillage); session != nil {
		eliminated, _ = r.ballots.Conclude(session.ID)
	}
	if eliminated != "" {
		r.eliminate(eliminated)
	}
	r.logger.Info().Str("eliminated", eliminated).Msg("village vote concluded")

	winner := r.currentWinner()
	r.broadcastPacket(MakePacketVotingConcluded(eliminated, winner))
	if winner != WinnerNone {
		r.endGame(winner)
		return
	}
	r.enterNight(now)
}

func (r *room) concludeNight(now time.Time) {
	if session := r.ballots.ByKind(VoteDetective); session != nil {
		if !session.Delivered && len(session.Votes) > 0 {
			r.deliverInvestigation(session)
		}
		r.ballots.Conclude(session.ID)
	}

	var saved string
	if session := r.ballots.ByKind(VoteDoctor); session != nil {
		saved, _ = r.ballots.Conclude(session.ID)
	}
	var killed string
	if session := r.ballots.ByKind(VoteMafia); session != nil {
		killed, _ = r.ballots.Conclude(session.ID)
	}

	var eliminated string
	if killed != "" && killed != saved {
		eliminated = killed
		r.eliminate(killed)
	}
	r.logger.Info().Str("eliminated", eliminated).Str("saved", saved).Msg("night concluded")

	winner := r.currentWinner()
	r.broadcastPacket(MakePacketVotingConcluded(eliminated, winner))
	if winner != WinnerNone {
		r.endGame(winner)
		return
	}
	r.enterDay(now)
}

// deliverInvestigation reveals the pool's pick to the detectives. At most one
// reveal per session.
func (r *room) deliverInvestigation(session *VotingSession) {
	target := calculateResult(session.Votes)
	if target == "" {
		return
	}
	suspect := r.seatOf(target)
	if suspect == nil {
		return
	}
	session.Delivered = true
	packet := MakePacketInvestigationResult(target, suspect.role == RoleMafia)
	for name := range session.Voters {
		if s := r.seatOf(name); s != nil {
			r.sendTo(s.player, packet)
		}
	}
}

// eliminate marks a player dead. The seat stays so the ghost keeps receiving
// broadcasts; open sessions are scrubbed of the name.
func (r *room) eliminate(name string) {
	s := r.seatOf(name)
	if s == nil {
		return
	}
	s.alive = false
	r.ballots.DropPlayer(name)
	r.logger.Info().Str("player", name).Msg("player eliminated")
}

func (r *room) endGame(w Winner) {
	r.winner = w
	r.phase = PhaseEnded
	r.logger.Info().Str("winner", w.String()).Msg("game over")
	r.destroy()
}

func (r *room) alivePlayers() []string {
	names := make([]string, 0, len(r.seats))
	for _, s := range r.seats {
		if s.alive {
			names = append(names, s.name)
		}
	}
	return names
}

func (r *room) aliveByRole(role Role) []string {
	var names []string
	for _, s := range r.seats {
		if s.alive && s.role == role {
			names = append(names, s.name)
		}
	}
	return names
}
