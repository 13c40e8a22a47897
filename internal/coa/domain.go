package coa

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories. The set is open-ended per
// entity; these are the standard five.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeRevenue   AccountType = "revenue"
	TypeExpense   AccountType = "expense"
)

// Subtype marks accounts used for specialized linking.
type Subtype string

const (
	SubtypeCash         Subtype = "cash"
	SubtypeBank         Subtype = "bank"
	SubtypeWallet       Subtype = "wallet"
	SubtypeExchange     Subtype = "exchange"
	SubtypeIntercompany Subtype = "intercompany"
)

// Account models a chart of accounts node. The id is the human-assigned
// code (e.g. "1.1.2"), unique within the owning entity.
type Account struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     AccountType `json:"accountType"`
	Subtype  Subtype     `json:"subtype,omitempty"`
	ParentID *string     `json:"parentId"`
	IsGroup  bool        `json:"isGroup"`
	EntityID string      `json:"entityId"`
	// RelatedEntityID names the counterpart unit on intercompany
	// accounts. Replaces the legacy display-name matching.
	RelatedEntityID   string          `json:"relatedEntityId,omitempty"`
	AllowedCurrencies []string        `json:"allowedCurrencies,omitempty"`
	Balance           decimal.Decimal `json:"balance"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// IsIntercompany reports whether the account tracks a counterpart unit.
func (a Account) IsIntercompany() bool { return a.Subtype == SubtypeIntercompany }
