package game

import "math/rand"

type Role int

const (
	RoleUnassigned Role = iota
	RoleVillager
	RoleMafia
	RoleDoctor
	RoleDetective
)

func (r Role) String() string {
	switch r {
	case RoleVillager:
		return "villager"
	case RoleMafia:
		return "mafia"
	case RoleDoctor:
		return "doctor"
	case RoleDetective:
		return "detective"
	}
	return "unassigned"
}

const (
	MinPlayers = 6
	MaxPlayers = 20

	// From eleven players up the town gets a second doctor and detective.
	twoSpecialistsThreshold = 11
)

func mafiaCount(playerCount int) int {
	switch {
	case playerCount <= 9:
		return 1
	case playerCount <= 14:
		return 2
	case playerCount <= 19:
		return 3
	default:
		return 5
	}
}

// DetermineRoles maps a player count to the multiset of roles dealt out at
// game start: mafia first, then doctors, then detectives, villagers last.
func DetermineRoles(playerCount int) ([]Role, error) {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return nil, ErrInvalidPlayerCount
	}

	specialists := 1
	if playerCount >= twoSpecialistsThreshold {
		specialists = 2
	}

	roles := make([]Role, 0, playerCount)
	for i := 0; i < mafiaCount(playerCount); i++ {
		roles = append(roles, RoleMafia)
	}
	for i := 0; i < specialists; i++ {
		roles = append(roles, RoleDoctor)
	}
	for i := 0; i < specialists; i++ {
		roles = append(roles, RoleDetective)
	}
	for len(roles) < playerCount {
		roles = append(roles, RoleVillager)
	}
	return roles, nil
}

// realRandom draws from math/rand's locked global source, so one value can be
// shared by every lobby.
type realRandom struct{}

func (realRandom) Intn(n int) int { return rand.Intn(n) }

func NewRandomSource() RandomSource { return realRandom{} }
