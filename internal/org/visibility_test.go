package org

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testEntities() []Entity {
	return []Entity{
		{ID: "HOLD-001", Name: "Mizan Holding", Kind: KindHolding},
		{ID: "UNIT-001", Name: "Trading", Kind: KindUnit, ParentID: strPtr("HOLD-001")},
		{ID: "UNIT-002", Name: "Manufacturing", Kind: KindUnit, ParentID: strPtr("HOLD-001")},
		{ID: "BR-001", Name: "Sana'a Branch", Kind: KindBranch, ParentID: strPtr("UNIT-001")},
		{ID: "BR-002", Name: "Aden Branch", Kind: KindBranch, ParentID: strPtr("UNIT-001")},
		{ID: "BR-003", Name: "Taiz Branch", Kind: KindBranch, ParentID: strPtr("UNIT-002")},
	}
}

func scopeFor(t *testing.T, id string) Scope {
	t.Helper()
	all := testEntities()
	for _, e := range all {
		if e.ID == id {
			return NewScope(e, all)
		}
	}
	t.Fatalf("unknown entity %s", id)
	return Scope{}
}

func TestCanSeeEntityRuleTable(t *testing.T) {
	cases := []struct {
		current string
		target  string
		want    bool
	}{
		{"HOLD-001", "HOLD-001", true},
		{"HOLD-001", "UNIT-001", true},
		{"HOLD-001", "BR-003", true},
		{"UNIT-001", "UNIT-001", true},
		{"UNIT-001", "BR-001", true},
		{"UNIT-001", "BR-002", true},
		{"UNIT-001", "BR-003", false},
		{"UNIT-001", "UNIT-002", false},
		{"UNIT-001", "HOLD-001", false},
		{"BR-001", "BR-001", true},
		{"BR-001", "UNIT-001", false},
		{"BR-001", "BR-002", false},
		{"BR-001", "HOLD-001", false},
	}
	for _, tc := range cases {
		got := scopeFor(t, tc.current).CanSeeEntity(tc.target)
		require.Equalf(t, tc.want, got, "current=%s target=%s", tc.current, tc.target)
	}
}

func TestCanSeeAccountIsNotEntityVisibility(t *testing.T) {
	// A branch cannot see its parent unit as an entity, yet it works
	// against the unit's shared chart of accounts.
	branch := scopeFor(t, "BR-001")
	require.False(t, branch.CanSeeEntity("UNIT-001"))
	require.True(t, branch.CanSeeAccount("UNIT-001"))
	require.True(t, branch.CanSeeAccount("BR-001"))
	require.False(t, branch.CanSeeAccount("UNIT-002"))
	require.False(t, branch.CanSeeAccount("BR-002"))
}

func TestCanSeeAccountHolding(t *testing.T) {
	holding := scopeFor(t, "HOLD-001")
	require.True(t, holding.CanSeeAccount("UNIT-001"))
	require.True(t, holding.CanSeeAccount("UNIT-002"))
	// Branch-owned accounts are below the consolidation level.
	require.False(t, holding.CanSeeAccount("BR-001"))
	require.False(t, holding.CanSeeAccount("HOLD-001"))
}

func TestCanSeeAccountUnit(t *testing.T) {
	unit := scopeFor(t, "UNIT-001")
	require.True(t, unit.CanSeeAccount("UNIT-001"))
	require.False(t, unit.CanSeeAccount("UNIT-002"))
	require.False(t, unit.CanSeeAccount("BR-001"))
}

func TestCanMutateAccounts(t *testing.T) {
	require.False(t, scopeFor(t, "HOLD-001").CanMutateAccounts())
	require.True(t, scopeFor(t, "UNIT-001").CanMutateAccounts())
	require.True(t, scopeFor(t, "BR-001").CanMutateAccounts())
}

func TestKindFromID(t *testing.T) {
	require.Equal(t, KindHolding, KindFromID("HOLD-001"))
	require.Equal(t, KindUnit, KindFromID("UNIT-042"))
	require.Equal(t, KindBranch, KindFromID("BR-007"))
	require.Equal(t, Kind(""), KindFromID("X-001"))
}
