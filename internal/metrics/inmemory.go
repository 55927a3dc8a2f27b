package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PeopleCreated  uint64
	PeopleUpdated  uint64
	PeopleDeleted  uint64
	LoginSuccesses uint64
	LoginFailures  uint64
	TokensRejected uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	peopleCreated  atomic.Uint64
	peopleUpdated  atomic.Uint64
	peopleDeleted  atomic.Uint64
	loginSuccesses atomic.Uint64
	loginFailures  atomic.Uint64
	tokensRejected atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		PeopleCreated:  m.peopleCreated.Load(),
		PeopleUpdated:  m.peopleUpdated.Load(),
		PeopleDeleted:  m.peopleDeleted.Load(),
		LoginSuccesses: m.loginSuccesses.Load(),
		LoginFailures:  m.loginFailures.Load(),
		TokensRejected: m.tokensRejected.Load(),
	}
}

// IncPersonCreated increments the created counter.
func (m *InMemoryRecorder) IncPersonCreated() { m.peopleCreated.Add(1) }

// IncPersonUpdated increments the updated counter.
func (m *InMemoryRecorder) IncPersonUpdated() { m.peopleUpdated.Add(1) }

// IncPersonDeleted increments the deleted counter.
func (m *InMemoryRecorder) IncPersonDeleted() { m.peopleDeleted.Add(1) }

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() { m.loginSuccesses.Add(1) }

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() { m.loginFailures.Add(1) }

// IncTokenRejected increments the rejected token counter.
func (m *InMemoryRecorder) IncTokenRejected() { m.tokensRejected.Add(1) }
