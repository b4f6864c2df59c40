package game

import (
	"sync"

	"github.com/google/uuid"
)

const lobbyIdLength = 8

// idGen hands out short lobby ids. Collisions on an 8-char uuid prefix are
// unlikely but cheap to guard against.
type idGen struct {
	mutex sync.Mutex
	used  map[string]struct{}
}

func NewIdGen() *idGen {
	return &idGen{used: make(map[string]struct{})}
}

func (g *idGen) Generate() string {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for {
		id := uuid.NewString()[:lobbyIdLength]
		if _, taken := g.used[id]; !taken {
			g.used[id] = struct{}{}
			return id
		}
	}
}

func (g *idGen) Dispose(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.used, id)
}
