package coa

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/shared"
)

func TestGateHoldingNeverMutates(t *testing.T) {
	var gate Gate
	scope := scopeOf(t, "HOLD-001")
	a := acct("UNIT-001", "1", "")

	err := gate.ValidateCreate(scope, nil, a)
	require.True(t, shared.IsValidation(err))
	err = gate.ValidateUpdate(scope, nil, a)
	require.True(t, shared.IsValidation(err))
	err = gate.ValidateDelete(scope, nil, a)
	require.True(t, shared.IsValidation(err))
}

func TestGateScopeBoundary(t *testing.T) {
	var gate Gate
	scope := scopeOf(t, "UNIT-001")

	err := gate.ValidateCreate(scope, nil, acct("UNIT-002", "1", ""))
	require.True(t, shared.IsValidation(err))

	// A branch may touch its parent unit's chart.
	branchScope := scopeOf(t, "BR-001")
	err = gate.ValidateCreate(branchScope, nil, acct("UNIT-001", "1", ""))
	require.NoError(t, err)
}

func TestGateDuplicateCode(t *testing.T) {
	var gate Gate
	scope := scopeOf(t, "UNIT-001")
	existing := []Account{acct("UNIT-001", "1.1", "")}

	err := gate.ValidateCreate(scope, existing, acct("UNIT-001", "1.1", ""))
	require.True(t, shared.IsValidation(err))

	// Codes are unique per entity, not globally.
	existing = []Account{acct("UNIT-002", "1.1", "")}
	err = gate.ValidateCreate(scopeOf(t, "UNIT-002"), nil, acct("UNIT-002", "1.1", ""))
	require.NoError(t, err)
}

func TestGateParentRules(t *testing.T) {
	var gate Gate
	scope := scopeOf(t, "UNIT-001")
	existing := []Account{
		acct("UNIT-001", "1", "", asGroup),
		acct("UNIT-001", "1.5", ""),
		acct("UNIT-001", "5", "", asGroup, func(a *Account) { a.Type = TypeExpense }),
	}

	// Missing parent.
	err := gate.ValidateCreate(scope, existing, acct("UNIT-001", "9.1", "9"))
	require.True(t, shared.IsNotFound(err))

	// Non-group parent.
	err = gate.ValidateCreate(scope, existing, acct("UNIT-001", "1.5.1", "1.5"))
	require.True(t, shared.IsValidation(err))

	// Type mismatch with parent.
	err = gate.ValidateCreate(scope, existing, acct("UNIT-001", "5.1", "5"))
	require.True(t, shared.IsValidation(err))

	// Happy path.
	err = gate.ValidateCreate(scope, existing, acct("UNIT-001", "1.2", "1"))
	require.NoError(t, err)
}

func TestGateRejectionsAreRepeatable(t *testing.T) {
	var gate Gate
	scope := scopeOf(t, "UNIT-001")
	existing := []Account{
		acct("UNIT-001", "1", "", asGroup),
		acct("UNIT-001", "1.5", ""),
	}
	bad := acct("UNIT-001", "1.5.1", "1.5")

	// Retrying an invalid mutation yields the same rejection and never
	// alters the account set.
	before := append([]Account(nil), existing...)
	for i := 0; i < 3; i++ {
		err := gate.ValidateCreate(scope, existing, bad)
		require.True(t, shared.IsValidation(err))
	}
	require.Equal(t, before, existing)
}

func TestGateUpdateSelfParent(t *testing.T) {
	var gate Gate
	scope := scopeOf(t, "UNIT-001")
	a := acct("UNIT-001", "1", "1")
	err := gate.ValidateUpdate(scope, []Account{a}, a)
	require.True(t, shared.IsValidation(err))
}

func TestGateUpdateKeepsChildrenConsistent(t *testing.T) {
	var gate Gate
	scope := scopeOf(t, "UNIT-001")
	parent := acct("UNIT-001", "1", "", asGroup)
	child := acct("UNIT-001", "1.1", "1")
	existing := []Account{parent, child}

	// Demoting a populated group to a leaf would leave the child dangling.
	demoted := parent
	demoted.IsGroup = false
	err := gate.ValidateUpdate(scope, existing, demoted)
	require.True(t, shared.IsValidation(err))

	// Retyping the group while the child keeps the old type breaks the
	// shared-type rule.
	retyped := parent
	retyped.Type = TypeExpense
	err = gate.ValidateUpdate(scope, existing, retyped)
	require.True(t, shared.IsValidation(err))

	// A rename of the same group is still fine.
	renamed := parent
	renamed.Name = "Current Assets"
	err = gate.ValidateUpdate(scope, existing, renamed)
	require.NoError(t, err)

	// Children in another entity's chart never pin an update.
	foreign := []Account{acct("UNIT-002", "1.1", "1")}
	err = gate.ValidateUpdate(scope, foreign, demoted)
	require.NoError(t, err)
}

func TestGateDeleteGuards(t *testing.T) {
	var gate Gate
	scope := scopeOf(t, "UNIT-001")
	parent := acct("UNIT-001", "1", "", asGroup)
	child := acct("UNIT-001", "1.1", "1")
	existing := []Account{parent, child}

	err := gate.ValidateDelete(scope, existing, parent)
	require.True(t, shared.IsValidation(err))

	funded := acct("UNIT-001", "2", "")
	funded.Balance = decimal.RequireFromString("10.50")
	err = gate.ValidateDelete(scope, []Account{funded}, funded)
	require.True(t, shared.IsValidation(err))

	err = gate.ValidateDelete(scope, existing, child)
	require.NoError(t, err)
}
