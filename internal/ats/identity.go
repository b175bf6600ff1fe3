package ats

import "context"

// SystemActor labels status entries written without a known identity.
const SystemActor = "System"

// Identity supplies the actor credited with a mutation. ok is false when the
// caller is anonymous.
type Identity interface {
	Current(ctx context.Context) (actor string, ok bool)
}

type actorKey struct{}

// WithActor returns a context carrying actor for ContextIdentity.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ContextIdentity reads the actor set by WithActor and falls back to a fixed
// default, which may be empty.
type ContextIdentity struct {
	Default string
}

func (i ContextIdentity) Current(ctx context.Context) (string, bool) {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor, true
	}
	if i.Default != "" {
		return i.Default, true
	}
	return "", false
}

// actorLabel is the value written to StatusEntry.Actor.
func actorLabel(ctx context.Context, id Identity) string {
	if id == nil {
		return SystemActor
	}
	if actor, ok := id.Current(ctx); ok {
		return actor
	}
	return SystemActor
}

// auditActor is the value written to CreatedBy/LastUpdatedBy, empty when
// anonymous.
func auditActor(ctx context.Context, id Identity) string {
	if id == nil {
		return ""
	}
	actor, _ := id.Current(ctx)
	return actor
}
