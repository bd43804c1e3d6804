package api

import (
	"context"
	"errors"

	"github.com/rpupo63/project-hub-backend/auth"
)

type keyType string

const principalKey keyType = "principal"

// ctxWithPrincipal adds the verified caller to the context
func ctxWithPrincipal(ctx context.Context, principal auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// ctxGetPrincipal retrieves the caller set by the auth middleware
func ctxGetPrincipal(ctx context.Context) (auth.Principal, error) {
	principal, ok := ctx.Value(principalKey).(auth.Principal)
	if !ok {
		return auth.Principal{}, errors.New("principal not found in context")
	}
	return principal, nil
}
