package coa

import (
	"strings"

	"github.com/mizan-erp/mizan/internal/org"
	"github.com/mizan-erp/mizan/internal/shared"
)

// Gate validates structural edits to the chart of accounts. All
// rejections are validation errors, never panics; retrying a rejected
// mutation yields the same rejection until the underlying state changes.
type Gate struct{}

// ValidateCreate checks a new account against the scope and the owning
// entity's existing accounts.
func (Gate) ValidateCreate(scope org.Scope, existing []Account, a Account) error {
	if !scope.CanMutateAccounts() {
		return shared.Validation("the holding entity cannot modify accounts").WithEntity(scope.Current.ID)
	}
	if !scope.CanSeeAccount(a.EntityID) {
		return shared.Validation("account entity is outside the current scope").WithEntity(a.EntityID)
	}
	if strings.TrimSpace(a.ID) == "" {
		return shared.Validation("account code is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return shared.Validation("account name is required")
	}
	if a.Type == "" {
		return shared.Validation("account type is required").WithAccount(a.ID)
	}
	for _, other := range existing {
		if other.EntityID == a.EntityID && other.ID == a.ID {
			return shared.Validation("account code already in use").
				WithEntity(a.EntityID).WithAccount(a.ID)
		}
	}
	return validateParent(existing, a)
}

// ValidateUpdate checks a structural edit of an existing account.
func (Gate) ValidateUpdate(scope org.Scope, existing []Account, a Account) error {
	if !scope.CanMutateAccounts() {
		return shared.Validation("the holding entity cannot modify accounts").WithEntity(scope.Current.ID)
	}
	if !scope.CanSeeAccount(a.EntityID) {
		return shared.Validation("account entity is outside the current scope").WithEntity(a.EntityID)
	}
	if strings.TrimSpace(a.Name) == "" {
		return shared.Validation("account name is required")
	}
	if a.ParentID != nil && *a.ParentID == a.ID {
		return shared.Validation("account cannot be its own parent").WithAccount(a.ID)
	}
	for _, other := range existing {
		if other.EntityID != a.EntityID || other.ParentID == nil || *other.ParentID != a.ID {
			continue
		}
		if !a.IsGroup {
			return shared.Validation("account with children must remain a group").
				WithEntity(a.EntityID).WithAccount(a.ID)
		}
		if other.Type != a.Type {
			return shared.Validation("cannot change type while children carry the old type").
				WithEntity(a.EntityID).WithAccount(a.ID)
		}
	}
	return validateParent(existing, a)
}

// ValidateDelete refuses while children or a nonzero balance remain.
func (Gate) ValidateDelete(scope org.Scope, existing []Account, target Account) error {
	if !scope.CanMutateAccounts() {
		return shared.Validation("the holding entity cannot modify accounts").WithEntity(scope.Current.ID)
	}
	for _, other := range existing {
		if other.EntityID == target.EntityID && other.ParentID != nil && *other.ParentID == target.ID {
			return shared.Validation("account still has child accounts").
				WithEntity(target.EntityID).WithAccount(target.ID)
		}
	}
	if !target.Balance.IsZero() {
		return shared.Validation("account balance must be zero before deletion").
			WithEntity(target.EntityID).WithAccount(target.ID)
	}
	return nil
}

func validateParent(existing []Account, a Account) error {
	if a.ParentID == nil {
		return nil
	}
	var parent *Account
	for i := range existing {
		if existing[i].EntityID == a.EntityID && existing[i].ID == *a.ParentID {
			parent = &existing[i]
			break
		}
	}
	if parent == nil {
		return shared.NotFound("parent account does not exist").
			WithEntity(a.EntityID).WithAccount(*a.ParentID)
	}
	if !parent.IsGroup {
		return shared.Validation("cannot attach to a non-group account").
			WithEntity(a.EntityID).WithAccount(a.ID)
	}
	if parent.Type != a.Type {
		return shared.Validation("parent account has a different account type").
			WithEntity(a.EntityID).WithAccount(a.ID)
	}
	return nil
}
