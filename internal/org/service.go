package org

import (
	"context"
	"regexp"
	"strings"

	"github.com/mizan-erp/mizan/internal/shared"
)

// BalancePort answers whether an entity still has accounts with nonzero
// balances. Implemented by the chart-of-accounts repository.
type BalancePort interface {
	HasNonZeroBalances(ctx context.Context, entityID string) (bool, error)
}

// Service enforces hierarchy invariants over entity mutations and keeps
// the in-memory store in step with the repository.
type Service struct {
	repo     Repository
	balances BalancePort
	store    *Store
}

// NewService wires the entity service.
func NewService(repo Repository, balances BalancePort, store *Store) *Service {
	return &Service{repo: repo, balances: balances, store: store}
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func (s *Service) List(ctx context.Context) ([]Entity, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Entity, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the hierarchy rules: exactly one holding, unit under
// holding, branch under unit.
func (s *Service) Create(ctx context.Context, e Entity) (Entity, error) {
	if err := s.validate(ctx, e); err != nil {
		return Entity{}, err
	}
	if e.Kind == KindHolding {
		exists, err := s.repo.HoldingExists(ctx)
		if err != nil {
			return Entity{}, err
		}
		if exists {
			return Entity{}, shared.Validation("a holding entity already exists")
		}
	}
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return Entity{}, err
	}
	s.store.Upsert(created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, e Entity) error {
	current, err := s.repo.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	e.Kind = current.Kind
	if err := s.validate(ctx, e); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return err
	}
	e.Logo = current.Logo
	e.CreatedAt = current.CreatedAt
	s.store.Upsert(e)
	return nil
}

// Delete refuses while children or nonzero linked balances remain.
func (s *Service) Delete(ctx context.Context, id string) error {
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return shared.Validation("entity still has child entities").WithEntity(id)
	}
	if s.balances != nil {
		dirty, err := s.balances.HasNonZeroBalances(ctx, id)
		if err != nil {
			return err
		}
		if dirty {
			return shared.Validation("entity still has accounts with nonzero balances").WithEntity(id)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.Remove(id)
	return nil
}

// UpdateLogo persists the logo and refreshes the store copy so the
// current selection never serves a stale image.
func (s *Service) UpdateLogo(ctx context.Context, id string, logo []byte) error {
	if err := s.repo.UpdateLogo(ctx, id, logo); err != nil {
		return err
	}
	return s.store.UpdateLogo(id, logo)
}

func (s *Service) validate(ctx context.Context, e Entity) error {
	if strings.TrimSpace(e.Name) == "" {
		return shared.Validation("entity name is required")
	}
	if KindFromID(e.ID) != e.Kind {
		return shared.Validation("entity id prefix does not match kind").WithEntity(e.ID)
	}
	if e.ThemeColor != "" && !hexColorRe.MatchString(e.ThemeColor) {
		return shared.Validation("theme color must be a hex value like #1f6f8b")
	}
	switch e.Kind {
	case KindHolding:
		if e.ParentID != nil {
			return shared.Validation("holding entity cannot have a parent")
		}
	case KindUnit:
		if e.ParentID == nil {
			return shared.Validation("unit must attach to the holding entity")
		}
		parent, err := s.repo.Get(ctx, *e.ParentID)
		if err != nil {
			return err
		}
		if parent.Kind != KindHolding {
			return shared.Validation("unit parent must be the holding entity").WithEntity(e.ID)
		}
	case KindBranch:
		if e.ParentID == nil {
			return shared.Validation("branch must attach to a unit")
		}
		parent, err := s.repo.Get(ctx, *e.ParentID)
		if err != nil {
			return err
		}
		if parent.Kind != KindUnit {
			return shared.Validation("branch parent must be a unit").WithEntity(e.ID)
		}
	default:
		return shared.Validation("unknown entity kind")
	}
	return nil
}
