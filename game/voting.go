package game

import "sort"

type VoteKind int

const (
	VoteVillage VoteKind = iota
	VoteMafia
	VoteDoctor
	VoteDetective
)

func (k VoteKind) String() string {
	switch k {
	case VoteMafia:
		return "mafia"
	case VoteDoctor:
		return "doctor"
	case VoteDetective:
		return "detective"
	}
	return "village"
}

// VotingSession is one bounded voting window. Voters and Targets are fixed
// when the session opens; Votes grows by at most one immutable entry per
// voter.
type VotingSession struct {
	ID      string
	Kind    VoteKind
	Voters  map[string]struct{}
	Targets map[string]struct{}
	Votes   map[string]string

	// Delivered marks that the detective result already went out; it is
	// sent at most once per session.
	Delivered bool
}

// Complete reports whether every remaining eligible voter has cast a vote.
func (s *VotingSession) Complete() bool {
	return len(s.Votes) >= len(s.Voters)
}

func (s *VotingSession) VoterNames() []string {
	names := make([]string, 0, len(s.Voters))
	for name := range s.Voters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ballotBox holds the open voting sessions of a single lobby. It is owned by
// the lobby's game loop and needs no locking.
type ballotBox struct {
	sessions map[string]*VotingSession
}

func newBallotBox() ballotBox {
	return ballotBox{sessions: make(map[string]*VotingSession)}
}

func (b *ballotBox) Open(id string, kind VoteKind, voters, targets []string) *VotingSession {
	session := &VotingSession{
		ID:      id,
		Kind:    kind,
		Voters:  make(map[string]struct{}, len(voters)),
		Targets: make(map[string]struct{}, len(targets)),
		Votes:   make(map[string]string),
	}
	for _, name := range voters {
		session.Voters[name] = struct{}{}
	}
	for _, name := range targets {
		session.Targets[name] = struct{}{}
	}
	b.sessions[id] = session
	return session
}

// Get returns nil when the session is absent, never an error.
func (b *ballotBox) Get(id string) *VotingSession {
	return b.sessions[id]
}

// ByKind returns the open session of the given kind, nil if none is open.
func (b *ballotBox) ByKind(kind VoteKind) *VotingSession {
	for _, session := range b.sessions {
		if session.Kind == kind {
			return session
		}
	}
	return nil
}

func (b *ballotBox) Sessions() []*VotingSession {
	sessions := make([]*VotingSession, 0, len(b.sessions))
	for _, session := range b.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Cast records voter→target. The first vote wins; any rejected cast leaves
// the session untouched.
func (b *ballotBox) Cast(id, voter, target string) error {
	session := b.sessions[id]
	if session == nil {
		return errNoSession
	}
	if _, ok := session.Voters[voter]; !ok {
		return errIneligibleVoter
	}
	if _, ok := session.Votes[voter]; ok {
		return errAlreadyVoted
	}
	if _, ok := session.Targets[target]; !ok {
		return errIneligibleTarget
	}
	session.Votes[voter] = target
	return nil
}

// Conclude removes the session and returns the plurality result, "" when the
// vote was tied or empty. ok is false when no such session exists.
func (b *ballotBox) Conclude(id string) (string, bool) {
	session := b.sessions[id]
	if session == nil {
		return "", false
	}
	delete(b.sessions, id)
	return calculateResult(session.Votes), true
}

// DropPlayer scrubs a removed player from every open session: their
// eligibility, their own vote, and any votes naming them as target.
func (b *ballotBox) DropPlayer(name string) {
	for _, session := range b.sessions {
		delete(session.Voters, name)
		delete(session.Targets, name)
		delete(session.Votes, name)
		for voter, target := range session.Votes {
			if target == name {
				delete(session.Votes, voter)
			}
		}
	}
}

// calculateResult tallies votes per target. Only a strict maximum wins; a tie
// or an empty tally yields no result.
func calculateResult(votes map[string]string) string {
	tally := make(map[string]int)
	for _, target := range votes {
		tally[target]++
	}

	best, bestCount, tied := "", 0, false
	for target, count := range tally {
		switch {
		case count > bestCount:
			best, bestCount, tied = target, count, false
		case count == bestCount:
			tied = true
		}
	}
	if tied || bestCount == 0 {
		return ""
	}
	return best
}
