package shared

import "context"

type currentEntityKey struct{}

// ContextWithCurrentEntity stores the acting entity id in context.
func ContextWithCurrentEntity(ctx context.Context, entityID string) context.Context {
	return context.WithValue(ctx, currentEntityKey{}, entityID)
}

// CurrentEntityFromContext extracts the acting entity id, if any.
func CurrentEntityFromContext(ctx context.Context) string {
	id, _ := ctx.Value(currentEntityKey{}).(string)
	return id
}
