package coa

import (
	"context"
	"sync"

	"github.com/mizan-erp/mizan/internal/org"
	"github.com/mizan-erp/mizan/internal/shared"
)

// Service drives the chart of accounts: scoped tree building, expand and
// reorder state per viewer session, and gated structural mutations.
type Service struct {
	repo  Repository
	store *org.Store
	gate  Gate

	mu     sync.Mutex
	expand map[string]*ExpandState
	order  map[string]*OrderState
}

// NewService wires the CoA service.
func NewService(repo Repository, store *org.Store) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		expand: make(map[string]*ExpandState),
		order:  make(map[string]*OrderState),
	}
}

// scope resolves the acting entity: request context first, then the
// store's selection.
func (s *Service) scope(ctx context.Context) (org.Scope, error) {
	if id := shared.CurrentEntityFromContext(ctx); id != "" {
		if e, ok := s.store.Get(id); ok {
			return s.store.ScopeFor(e), nil
		}
		return org.Scope{}, shared.NotFound("entity does not exist").WithEntity(id)
	}
	current, ok := s.store.Current()
	if !ok {
		return org.Scope{}, shared.Validation("no current entity selected")
	}
	return s.store.ScopeFor(current), nil
}

func (s *Service) sessionState(sessionKey string) (*ExpandState, *OrderState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expand[sessionKey]
	if !ok {
		exp = NewExpandState()
		s.expand[sessionKey] = exp
	}
	ord, ok := s.order[sessionKey]
	if !ok {
		ord = NewOrderState()
		s.order[sessionKey] = ord
	}
	return exp, ord
}

// TreeFilter narrows the tree request.
type TreeFilter struct {
	Search string
	Type   AccountType
}

// Tree builds the scoped, filtered hierarchy for one viewer session.
func (s *Service) Tree(ctx context.Context, sessionKey string, f TreeFilter) (Tree, error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return Tree{}, err
	}
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return Tree{}, err
	}
	exp, ord := s.sessionState(sessionKey)
	return BuildTree(accounts, Filter{Scope: &scope, Search: f.Search, Type: f.Type}, exp, ord), nil
}

// Toggle flips one node's expansion for the session.
func (s *Service) Toggle(sessionKey, accountID string) bool {
	exp, _ := s.sessionState(sessionKey)
	return exp.Toggle(accountID)
}

// ToggleAll flips every node for the session.
func (s *Service) ToggleAll(sessionKey string, expanded bool) {
	exp, _ := s.sessionState(sessionKey)
	exp.SetAll(expanded)
}

// Reorder moves a row to the target's presentation position. Cosmetic
// only: parent and code are untouched.
func (s *Service) Reorder(ctx context.Context, sessionKey, draggedID, targetID string) error {
	tree, err := s.Tree(ctx, sessionKey, TreeFilter{})
	if err != nil {
		return err
	}
	rows := tree.Flatten()
	presentation := make([]string, len(rows))
	for i, n := range rows {
		presentation[i] = n.ID
	}
	_, ord := s.sessionState(sessionKey)
	ord.Move(presentation, draggedID, targetID)
	return nil
}

// List returns the accounts visible under the current scope.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	visible := accounts[:0]
	for _, a := range accounts {
		if scope.CanSeeAccount(a.EntityID) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

// Get returns one visible account.
func (s *Service) Get(ctx context.Context, entityID, id string) (Account, error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return Account{}, err
	}
	if !scope.CanSeeAccount(entityID) {
		return Account{}, shared.NotFound("account does not exist").WithEntity(entityID).WithAccount(id)
	}
	return s.repo.Get(ctx, entityID, id)
}

// Create validates through the gate and persists.
func (s *Service) Create(ctx context.Context, a Account) (Account, error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return Account{}, err
	}
	existing, err := s.repo.ListByEntity(ctx, a.EntityID)
	if err != nil {
		return Account{}, err
	}
	if err := s.gate.ValidateCreate(scope, existing, a); err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, a)
}

// Update validates through the gate and persists.
func (s *Service) Update(ctx context.Context, a Account) error {
	scope, err := s.scope(ctx)
	if err != nil {
		return err
	}
	existing, err := s.repo.ListByEntity(ctx, a.EntityID)
	if err != nil {
		return err
	}
	if err := s.gate.ValidateUpdate(scope, existing, a); err != nil {
		return err
	}
	return s.repo.Update(ctx, a)
}

// Delete validates through the gate and persists.
func (s *Service) Delete(ctx context.Context, entityID, id string) error {
	scope, err := s.scope(ctx)
	if err != nil {
		return err
	}
	target, err := s.repo.Get(ctx, entityID, id)
	if err != nil {
		return err
	}
	existing, err := s.repo.ListByEntity(ctx, entityID)
	if err != nil {
		return err
	}
	if err := s.gate.ValidateDelete(scope, existing, target); err != nil {
		return err
	}
	return s.repo.Delete(ctx, entityID, id)
}
