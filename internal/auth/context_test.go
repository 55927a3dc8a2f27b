package auth

import (
	"context"
	"testing"

	"github.com/personvault/personvault/internal/testutil"
)

func TestPersonContextRoundTrip(t *testing.T) {
	t.Parallel()

	person := testutil.NewTestPerson(t, "609.350.354-27")
	ctx := ContextWithPerson(context.Background(), person)

	got := PersonFromContext(ctx)
	if got == nil {
		t.Fatal("PersonFromContext() = nil")
	}
	if got.IdentityNumber != person.IdentityNumber {
		t.Errorf("IdentityNumber = %q, want %q", got.IdentityNumber, person.IdentityNumber)
	}
}

func TestPersonFromContextMissing(t *testing.T) {
	t.Parallel()

	if got := PersonFromContext(context.Background()); got != nil {
		t.Errorf("PersonFromContext() = %v, want nil", got)
	}
}
