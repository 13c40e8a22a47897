package interunit

// CreateTransferRequest is the JSON payload for posting a transfer.
type CreateTransferRequest struct {
	FromEntityID  string `json:"fromEntityId" validate:"required"`
	ToEntityID    string `json:"toEntityId" validate:"required,nefield=FromEntityID"`
	FromAccountID string `json:"fromAccountId" validate:"required"`
	ToAccountID   string `json:"toAccountId" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	Currency      string `json:"currency" validate:"required,len=3"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Description   string `json:"description"`
	Draft         bool   `json:"draft"`
}

// ReconcileRequest is the JSON payload for a reconciliation posting.
type ReconcileRequest struct {
	FromEntityID string `json:"fromEntityId" validate:"required"`
	ToEntityID   string `json:"toEntityId" validate:"required,nefield=FromEntityID"`
	Amount       string `json:"amount" validate:"required"`
	Description  string `json:"description"`
}
