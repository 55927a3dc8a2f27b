package auth

import (
	"context"

	"github.com/personvault/personvault/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// personContextKey is the context key for the authenticated person.
const personContextKey contextKey = "auth_person"

// ContextWithPerson adds the authenticated person to the context.
func ContextWithPerson(ctx context.Context, person *model.Person) context.Context {
	return context.WithValue(ctx, personContextKey, person)
}

// PersonFromContext retrieves the authenticated person from the
// context. Returns nil if not present.
func PersonFromContext(ctx context.Context) *model.Person {
	person, ok := ctx.Value(personContextKey).(*model.Person)
	if !ok {
		return nil
	}
	return person
}

// MustPersonFromContext retrieves the authenticated person from the
// context. Panics if not present (use only behind the auth middleware).
func MustPersonFromContext(ctx context.Context) *model.Person {
	person := PersonFromContext(ctx)
	if person == nil {
		panic("auth person not found - ensure auth middleware is applied")
	}
	return person
}
