package org

// CreateEntityRequest is the JSON payload for entity creation.
type CreateEntityRequest struct {
	ID         string  `json:"id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Kind       string  `json:"kind" validate:"required,oneof=holding unit branch"`
	ParentID   *string `json:"parentId"`
	ThemeColor string  `json:"themeColor" validate:"omitempty,hexcolor"`
}

// UpdateEntityRequest is the JSON payload for entity updates.
type UpdateEntityRequest struct {
	Name       string  `json:"name" validate:"required"`
	ParentID   *string `json:"parentId"`
	ThemeColor string  `json:"themeColor" validate:"omitempty,hexcolor"`
}

// SetCurrentRequest selects the acting entity for the session.
type SetCurrentRequest struct {
	EntityID string `json:"entityId" validate:"required"`
}

// ThemeResponse carries the resolved display color.
type ThemeResponse struct {
	EntityID string `json:"entityId"`
	Color    string `json:"color"`
}
