package coa

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/org"
	"github.com/mizan-erp/mizan/internal/shared"
)

type memoryAccountRepo struct {
	accounts map[string]Account
}

func acctKey(entityID, id string) string { return entityID + "/" + id }

func newMemoryAccountRepo(seed ...Account) *memoryAccountRepo {
	r := &memoryAccountRepo{accounts: make(map[string]Account)}
	for _, a := range seed {
		r.accounts[acctKey(a.EntityID, a.ID)] = a
	}
	return r
}

func (r *memoryAccountRepo) ListAll(ctx context.Context) ([]Account, error) {
	out := make([]Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (r *memoryAccountRepo) ListByEntity(ctx context.Context, entityID string) ([]Account, error) {
	var out []Account
	for _, a := range r.accounts {
		if a.EntityID == entityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAccountRepo) Get(ctx context.Context, entityID, id string) (Account, error) {
	a, ok := r.accounts[acctKey(entityID, id)]
	if !ok {
		return Account{}, shared.NotFound("account does not exist").WithEntity(entityID).WithAccount(id)
	}
	return a, nil
}

func (r *memoryAccountRepo) Create(ctx context.Context, a Account) (Account, error) {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.accounts[acctKey(a.EntityID, a.ID)] = a
	return a, nil
}

func (r *memoryAccountRepo) Update(ctx context.Context, a Account) error {
	k := acctKey(a.EntityID, a.ID)
	if _, ok := r.accounts[k]; !ok {
		return shared.NotFound("account does not exist").WithEntity(a.EntityID).WithAccount(a.ID)
	}
	r.accounts[k] = a
	return nil
}

func (r *memoryAccountRepo) Delete(ctx context.Context, entityID, id string) error {
	k := acctKey(entityID, id)
	if _, ok := r.accounts[k]; !ok {
		return shared.NotFound("account does not exist").WithEntity(entityID).WithAccount(id)
	}
	delete(r.accounts, k)
	return nil
}

func (r *memoryAccountRepo) HasNonZeroBalances(ctx context.Context, entityID string) (bool, error) {
	for _, a := range r.accounts {
		if a.EntityID == entityID && !a.Balance.IsZero() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryAccountRepo) ListIntercompany(ctx context.Context, entityID string) ([]Account, error) {
	var out []Account
	for _, a := range r.accounts {
		if a.EntityID == entityID && a.IsIntercompany() {
			out = append(out, a)
		}
	}
	return out, nil
}

func newAccountService(seed ...Account) (*Service, *memoryAccountRepo, *org.Store) {
	repo := newMemoryAccountRepo(seed...)
	store := org.NewStore(orgFixture())
	return NewService(repo, store), repo, store
}

func TestServiceScopeResolution(t *testing.T) {
	svc, _, store := newAccountService(
		acct("UNIT-001", "1", "", asGroup),
		acct("UNIT-002", "1", "", asGroup),
	)
	ctx := context.Background()

	// No selection and no header: nothing to scope against.
	_, err := svc.List(ctx)
	require.True(t, shared.IsValidation(err))

	// The store selection applies.
	require.NoError(t, store.SetCurrent("UNIT-001"))
	accounts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "UNIT-001", accounts[0].EntityID)

	// A request-context entity overrides the selection.
	ctx2 := shared.ContextWithCurrentEntity(ctx, "UNIT-002")
	accounts, err = svc.List(ctx2)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "UNIT-002", accounts[0].EntityID)

	// An unknown header entity is rejected outright.
	_, err = svc.List(shared.ContextWithCurrentEntity(ctx, "UNIT-404"))
	require.True(t, shared.IsNotFound(err))
}

func TestServiceTreePerSessionState(t *testing.T) {
	svc, _, store := newAccountService(
		acct("UNIT-001", "1", "", asGroup),
		acct("UNIT-001", "1.1", "1"),
	)
	require.NoError(t, store.SetCurrent("UNIT-001"))
	ctx := context.Background()

	expanded := svc.Toggle("session-a", "1")
	require.True(t, expanded)

	treeA, err := svc.Tree(ctx, "session-a", TreeFilter{})
	require.NoError(t, err)
	require.True(t, treeA.Roots[0].Expanded)

	// Another session still sees the default collapsed state.
	treeB, err := svc.Tree(ctx, "session-b", TreeFilter{})
	require.NoError(t, err)
	require.False(t, treeB.Roots[0].Expanded)
}

func TestServiceReorderSurvivesRebuild(t *testing.T) {
	svc, _, store := newAccountService(
		acct("UNIT-001", "1", ""),
		acct("UNIT-001", "2", ""),
		acct("UNIT-001", "3", ""),
	)
	require.NoError(t, store.SetCurrent("UNIT-001"))
	ctx := context.Background()

	require.NoError(t, svc.Reorder(ctx, "session-a", "3", "1"))
	tree, err := svc.Tree(ctx, "session-a", TreeFilter{})
	require.NoError(t, err)
	require.Equal(t, "3", tree.Roots[0].ID)
	require.Equal(t, "1", tree.Roots[1].ID)
	require.Equal(t, "2", tree.Roots[2].ID)
}

func TestServiceMutationsGoThroughGate(t *testing.T) {
	svc, repo, store := newAccountService(
		acct("UNIT-001", "1", "", asGroup),
	)
	ctx := context.Background()

	// The holding can browse but never edit.
	require.NoError(t, store.SetCurrent("HOLD-001"))
	_, err := svc.Create(ctx, acct("UNIT-001", "1.1", "1"))
	require.True(t, shared.IsValidation(err))

	require.NoError(t, store.SetCurrent("UNIT-001"))
	created, err := svc.Create(ctx, acct("UNIT-001", "1.1", "1"))
	require.NoError(t, err)
	require.Equal(t, "1.1", created.ID)

	// Deleting the parent while the child exists is rejected; state is
	// unchanged so retrying gives the same answer.
	for i := 0; i < 2; i++ {
		err = svc.Delete(ctx, "UNIT-001", "1")
		require.True(t, shared.IsValidation(err))
	}
	require.Len(t, repo.accounts, 2)

	require.NoError(t, svc.Delete(ctx, "UNIT-001", "1.1"))
	require.NoError(t, svc.Delete(ctx, "UNIT-001", "1"))
	require.Empty(t, repo.accounts)
}
