package org

import (
	"strings"
	"time"
)

// Kind enumerates the three levels of the organizational hierarchy.
type Kind string

const (
	KindHolding Kind = "holding"
	KindUnit    Kind = "unit"
	KindBranch  Kind = "branch"
)

// ID prefixes per kind. Ids are stable and carry their kind.
const (
	PrefixHolding = "HOLD-"
	PrefixUnit    = "UNIT-"
	PrefixBranch  = "BR-"
)

// Entity is one organizational node: the holding company, a business
// unit, or a branch of a unit.
type Entity struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"kind"`
	ParentID   *string   `json:"parentId"`
	ThemeColor string    `json:"themeColor,omitempty"`
	Logo       []byte    `json:"logo,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// KindFromID derives the kind from the id prefix; empty when unknown.
func KindFromID(id string) Kind {
	switch {
	case strings.HasPrefix(id, PrefixHolding):
		return KindHolding
	case strings.HasPrefix(id, PrefixUnit):
		return KindUnit
	case strings.HasPrefix(id, PrefixBranch):
		return KindBranch
	}
	return ""
}

// IsUnit reports whether the entity is a business unit.
func (e Entity) IsUnit() bool { return e.Kind == KindUnit }

// IsBranch reports whether the entity is a branch.
func (e Entity) IsBranch() bool { return e.Kind == KindBranch }

// IsHolding reports whether the entity is the holding company.
func (e Entity) IsHolding() bool { return e.Kind == KindHolding }
