package org

// Scope evaluates visibility and editability under one current-entity
// selection. It is pure and safe to rebuild on every request.
//
// Entity visibility:
//
//	holding  -> every entity in the system
//	unit U   -> U itself and branches whose parent is U
//	branch B -> B only
//
// Account scoping is deliberately a separate predicate: a branch sees its
// unit's shared chart in addition to branch-specific accounts, which the
// entity rule above would not allow.
type Scope struct {
	Current Entity
	byID    map[string]Entity
}

// NewScope builds a scope for current against the full entity set.
func NewScope(current Entity, all []Entity) Scope {
	idx := make(map[string]Entity, len(all))
	for _, e := range all {
		idx[e.ID] = e
	}
	if _, ok := idx[current.ID]; !ok {
		idx[current.ID] = current
	}
	return Scope{Current: current, byID: idx}
}

// Lookup returns the entity for id within the scope's snapshot.
func (s Scope) Lookup(id string) (Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// CanSeeEntity implements the entity visibility rule table.
func (s Scope) CanSeeEntity(targetID string) bool {
	switch s.Current.Kind {
	case KindHolding:
		return true
	case KindUnit:
		if targetID == s.Current.ID {
			return true
		}
		target, ok := s.byID[targetID]
		return ok && target.Kind == KindBranch && target.ParentID != nil && *target.ParentID == s.Current.ID
	case KindBranch:
		return targetID == s.Current.ID
	}
	return false
}

// CanSeeAccount decides whether an account owned by ownerEntityID is
// visible under the current selection.
func (s Scope) CanSeeAccount(ownerEntityID string) bool {
	switch s.Current.Kind {
	case KindHolding:
		// Accounts are never owned by the holding itself; visible when the
		// owner is a unit directly under this holding.
		owner, ok := s.byID[ownerEntityID]
		return ok && owner.Kind == KindUnit && owner.ParentID != nil && *owner.ParentID == s.Current.ID
	case KindUnit:
		return ownerEntityID == s.Current.ID
	case KindBranch:
		if ownerEntityID == s.Current.ID {
			return true
		}
		return s.Current.ParentID != nil && ownerEntityID == *s.Current.ParentID
	}
	return false
}

// CanMutateAccounts reports whether the current selection may create,
// edit, or delete accounts. The holding sees everything but edits nothing.
func (s Scope) CanMutateAccounts() bool {
	return s.Current.Kind != KindHolding
}
