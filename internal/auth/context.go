package auth

import (
	"context"

	"github.com/BigazyGalym/Diplom/internal/model"
)

type callerKey struct{}

// WithCaller returns a copy of ctx carrying the authenticated caller.
func WithCaller(ctx context.Context, caller *model.AuthContext) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// Caller returns the authenticated caller, or nil on public routes.
func Caller(ctx context.Context) *model.AuthContext {
	caller, _ := ctx.Value(callerKey{}).(*model.AuthContext)
	return caller
}

// MustCaller is Caller for handlers mounted behind the auth middleware.
// A missing caller there is a routing bug, so it panics.
func MustCaller(ctx context.Context) *model.AuthContext {
	caller := Caller(ctx)
	if caller == nil {
		panic("auth: no caller in context; route is not behind the auth middleware")
	}
	return caller
}

// UserID is the owning user of every record the request may touch.
// It is empty when the request is unauthenticated.
func UserID(ctx context.Context) string {
	if caller := Caller(ctx); caller != nil {
		return caller.UserID
	}
	return ""
}
