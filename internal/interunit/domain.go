package interunit

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus tracks the posting lifecycle.
type TransferStatus string

const (
	StatusPending   TransferStatus = "pending"
	StatusCompleted TransferStatus = "completed"
	StatusCancelled TransferStatus = "cancelled"
)

// Transfer is one cross-unit money movement. Posting it produces two
// mirrored ledger effects, one in each unit's books, all-or-nothing.
type Transfer struct {
	ID             string          `json:"id"`
	TransferNumber string          `json:"transferNumber"`
	FromEntityID   string          `json:"fromEntityId"`
	ToEntityID     string          `json:"toEntityId"`
	FromAccountID  string          `json:"fromAccountId"`
	ToAccountID    string          `json:"toAccountId"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Status         TransferStatus  `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// EffectSide marks which leg of the pair an effect is.
type EffectSide string

const (
	SideDebit  EffectSide = "debit"
	SideCredit EffectSide = "credit"
)

// LedgerEffect is one posted leg: the debit in the sending unit's books
// or the credit in the receiving unit's books.
type LedgerEffect struct {
	TransferID string          `json:"transferId"`
	EntityID   string          `json:"entityId"`
	AccountID  string          `json:"accountId"`
	Side       EffectSide      `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
}

// CreateTransferInput carries everything needed to post a transfer.
type CreateTransferInput struct {
	FromEntityID  string
	ToEntityID    string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Currency      string
	Date          time.Time
	Description   string
	Draft         bool
}

// PairBalance reports the intercompany position between two units.
type PairBalance struct {
	EntityA   string          `json:"entityA"`
	EntityB   string          `json:"entityB"`
	TowardB   decimal.Decimal `json:"aTowardB"`
	TowardA   decimal.Decimal `json:"bTowardA"`
	Net       decimal.Decimal `json:"net"`
	Currency  string          `json:"currency,omitempty"`
	AsOf      time.Time       `json:"asOf"`
	AccountA  string          `json:"accountA"`
	AccountB  string          `json:"accountB"`
	Mirrored  bool            `json:"mirrored"`
	Threshold decimal.Decimal `json:"threshold"`
}

// BalanceReport is the system-wide intercompany check result.
type BalanceReport struct {
	AssetTotal     decimal.Decimal `json:"assetTotal"`
	LiabilityTotal decimal.Decimal `json:"liabilityTotal"`
	Difference     decimal.Decimal `json:"difference"`
	Balanced       bool            `json:"balanced"`
	CheckedAt      time.Time       `json:"checkedAt"`
}
