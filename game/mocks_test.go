package game

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(reason string) {
	m.Called(reason)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- Player ---

type MockPlayer struct {
	mock.Mock
}

func (m *MockPlayer) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlayer) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlayer) Send(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockPlayer) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockPlayer) SetRoom(r Room) {
	m.Called(r)
}

func (m *MockPlayer) CancelAndRelease() {
	m.Called()
}

// --- Room ---

type MockRoom struct {
	mock.Mock
}

func (m *MockRoom) RequestJoin(jreq roomJoinRequest) {
	m.Called(jreq)
}

func (m *MockRoom) Send(ctx context.Context, e clientPacketEnvelope) {
	m.Called(ctx, e)
}

func (m *MockRoom) RemoveMe(ctx context.Context, p Player) {
	m.Called(ctx, p)
}

func (m *MockRoom) Tick(now time.Time) {
	m.Called(now)
}

func (m *MockRoom) PingPlayers() {
	m.Called()
}

func (m *MockRoom) GameLoop() {
	m.Called()
}

func (m *MockRoom) CloseAndRelease() {
	m.Called()
}

func (m *MockRoom) SetId(id string) {
	m.Called(id)
}

func (m *MockRoom) SetRegistry(reg Registry) {
	m.Called(reg)
}

// --- Registry ---

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) RequestAddAndRunLobby(ctx context.Context, r Room) {
	m.Called(ctx, r)
}

func (m *MockRegistry) ForwardJoinRequest(ctx context.Context, jreq registryJoinRequest) {
	m.Called(ctx, jreq)
}

func (m *MockRegistry) RemoveLobby(id string) {
	m.Called(id)
}

// --- UniqueIdGenerator ---

type MockUniqueIdGenerator struct {
	mock.Mock
}

func (m *MockUniqueIdGenerator) Generate() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockUniqueIdGenerator) Dispose(id string) {
	m.Called(id)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// --- Rewriter ---

type MockRewriter struct {
	mock.Mock
}

func (m *MockRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// --- RandomSource helpers ---

// lastIndexRandom always picks the last index, turning the shuffle into the
// identity permutation.
type lastIndexRandom struct{}

func (lastIndexRandom) Intn(n int) int { return n - 1 }

// scriptedRandom replays a fixed sequence of draws.
type scriptedRandom struct {
	draws []int
	pos   int
}

func (s *scriptedRandom) Intn(n int) int {
	if s.pos >= len(s.draws) {
		return n - 1
	}
	d := s.draws[s.pos]
	s.pos++
	return d % n
}
