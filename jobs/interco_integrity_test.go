package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/interunit"
	"github.com/mizan-erp/mizan/internal/org"
	"github.com/mizan-erp/mizan/internal/shared"
)

func strPtr(s string) *string { return &s }

type stubBalanceService struct {
	mu      sync.Mutex
	report  interunit.BalanceReport
	pairs   map[string]interunit.PairBalance
	queried []string
}

func pairKey(a, b string) string { return a + "|" + b }

func (s *stubBalanceService) CheckSystemBalance(ctx context.Context) (interunit.BalanceReport, error) {
	return s.report, nil
}

func (s *stubBalanceService) NetBalance(ctx context.Context, entityA, entityB string) (interunit.PairBalance, error) {
	s.mu.Lock()
	s.queried = append(s.queried, pairKey(entityA, entityB))
	s.mu.Unlock()
	pair, ok := s.pairs[pairKey(entityA, entityB)]
	if !ok {
		return interunit.PairBalance{}, shared.NotFound("intercompany account toward counterpart not found")
	}
	return pair, nil
}

type stubDirectory struct {
	entities []org.Entity
}

func (s stubDirectory) List(ctx context.Context) ([]org.Entity, error) {
	return s.entities, nil
}

func threeUnits() stubDirectory {
	return stubDirectory{entities: []org.Entity{
		{ID: "HOLD-001", Kind: org.KindHolding},
		{ID: "UNIT-001", Kind: org.KindUnit, ParentID: strPtr("HOLD-001")},
		{ID: "UNIT-002", Kind: org.KindUnit, ParentID: strPtr("HOLD-001")},
		{ID: "UNIT-003", Kind: org.KindUnit, ParentID: strPtr("HOLD-001")},
		{ID: "BR-001", Kind: org.KindBranch, ParentID: strPtr("UNIT-001")},
	}}
}

func TestIntegrityScanSweepsUnitPairs(t *testing.T) {
	svc := &stubBalanceService{
		report: interunit.BalanceReport{Balanced: true},
		pairs: map[string]interunit.PairBalance{
			pairKey("UNIT-001", "UNIT-002"): {EntityA: "UNIT-001", EntityB: "UNIT-002", Net: decimal.Zero, Mirrored: true},
			pairKey("UNIT-001", "UNIT-003"): {EntityA: "UNIT-001", EntityB: "UNIT-003", Net: decimal.RequireFromString("12"), Mirrored: false},
			// UNIT-002/UNIT-003 carry no mutual accounts: not-found is
			// skipped, not an error.
		},
	}
	job := NewIntercompanyIntegrityJob(svc, threeUnits(), nil, nil)

	task, err := NewIntercompanyIntegrityTask("all")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	// Branches and the holding never enter the sweep.
	require.Len(t, svc.queried, 3)
	for _, q := range svc.queried {
		require.NotContains(t, q, "BR-001")
		require.NotContains(t, q, "HOLD-001")
	}
}

func TestIntegrityScanSingleUnitScope(t *testing.T) {
	svc := &stubBalanceService{pairs: map[string]interunit.PairBalance{}}
	job := NewIntercompanyIntegrityJob(svc, threeUnits(), nil, nil)

	task, err := NewIntercompanyIntegrityTask("UNIT-002")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, svc.queried, 2)
	for _, q := range svc.queried {
		require.Contains(t, q, "UNIT-002")
	}
}

func TestIntegrityScanBadPayloadSkipsRetry(t *testing.T) {
	job := NewIntercompanyIntegrityJob(&stubBalanceService{}, threeUnits(), nil, nil)
	task := asynq.NewTask(TaskIntercompanyIntegrity, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.True(t, errors.Is(err, asynq.SkipRetry))
}
