package coa

// CreateAccountRequest is the JSON payload for account creation.
type CreateAccountRequest struct {
	ID                string   `json:"id" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	AccountType       string   `json:"accountType" validate:"required"`
	Subtype           string   `json:"subtype"`
	ParentID          *string  `json:"parentId"`
	IsGroup           bool     `json:"isGroup"`
	EntityID          string   `json:"entityId" validate:"required"`
	RelatedEntityID   string   `json:"relatedEntityId"`
	AllowedCurrencies []string `json:"allowedCurrencies" validate:"dive,len=3"`
}

// UpdateAccountRequest is the JSON payload for account updates.
type UpdateAccountRequest struct {
	Name              string   `json:"name" validate:"required"`
	AccountType       string   `json:"accountType" validate:"required"`
	Subtype           string   `json:"subtype"`
	ParentID          *string  `json:"parentId"`
	IsGroup           bool     `json:"isGroup"`
	RelatedEntityID   string   `json:"relatedEntityId"`
	AllowedCurrencies []string `json:"allowedCurrencies" validate:"dive,len=3"`
}

// ReorderRequest moves one tree row onto another, display order only.
type ReorderRequest struct {
	DraggedID string `json:"draggedId" validate:"required"`
	TargetID  string `json:"targetId" validate:"required"`
}

// ToggleAllRequest flips every tree node to the same expansion state.
type ToggleAllRequest struct {
	Expanded bool `json:"expanded"`
}
