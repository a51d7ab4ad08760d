// Package auth carries the caller identity through a request and decides
// whether that identity may use the wizard in a course scope.
package auth

import (
	"context"
	"slices"
)

// CapabilityUse is the capability required to start or continue a wizard.
const CapabilityUse = "wizard:use"

// CapabilityManage allows privacy export and erasure across owners.
const CapabilityManage = "wizard:manage"

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	// Scopes lists the course ids the user may use the wizard in.
	Scopes []int64
	// Admin grants CapabilityManage in every scope.
	Admin bool
}

type identityKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}

// Authorizer decides whether an identity holds a capability in a scope.
type Authorizer interface {
	HasCapability(ctx context.Context, id Identity, capability string, scope int64) bool
}

// ClaimsAuthorizer grants capabilities from the identity's own claims:
// CapabilityUse in every listed scope, CapabilityManage to admins.
type ClaimsAuthorizer struct{}

func (ClaimsAuthorizer) HasCapability(_ context.Context, id Identity, capability string, scope int64) bool {
	if id.UserID == 0 {
		return false
	}
	switch capability {
	case CapabilityUse:
		return id.Admin || slices.Contains(id.Scopes, scope)
	case CapabilityManage:
		return id.Admin
	default:
		return false
	}
}

// AllowAll grants every capability. Used by tests and local tooling.
type AllowAll struct{}

func (AllowAll) HasCapability(context.Context, Identity, string, int64) bool { return true }
