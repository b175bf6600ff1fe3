package testutil

import (
	"testing"

	"ats-go/internal/ats"
	"ats-go/internal/vault"
)

// ServiceFixture bundles a Service with the collaborators tests inspect.
type ServiceFixture struct {
	Service  *ats.Service
	DB       *RecordingDatabase
	Store    *vault.MemoryVault
	Insights *StubInsightGenerator
	Clock    *StubClock
	IDs      *StubIDGenerator
}

// NewTestService creates a Service over a migrated in-memory database, a
// memory object store, the test encryptor and a stub insight generator.
// Mutations are credited to "tester".
func NewTestService(t *testing.T, opts ...ats.Option) *ServiceFixture {
	t.Helper()

	f := &ServiceFixture{
		DB:       NewRecordingDatabase(NewTestDatabase(t)),
		Store:    NewTestObjectStore(),
		Insights: &StubInsightGenerator{Answer: "Engage candidates early."},
		Clock:    FixedClock(),
		IDs:      NewStubIDGenerator(),
	}
	f.Service = ats.NewService(f.DB, f.Store, NewTestEncryptor(), f.Insights,
		ats.ContextIdentity{Default: "tester"}, ats.NewNopLogger(), f.Clock, f.IDs, opts...)
	return f
}
