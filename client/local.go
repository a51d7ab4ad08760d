package client

import (
	"context"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/endpoint"
)

// Local drives the endpoints in-process as a fixed identity.
type Local struct {
	endpoints endpoint.Endpoints
	identity  auth.Identity
}

// NewLocal creates an in-process backend acting as identity.
func NewLocal(endpoints endpoint.Endpoints, identity auth.Identity) *Local {
	return &Local{endpoints: endpoints, identity: identity}
}

func (l *Local) ctx(ctx context.Context) context.Context {
	return auth.NewContext(ctx, l.identity)
}

// Advance submits one step.
func (l *Local) Advance(ctx context.Context, req *endpoint.AdvanceRequest) (*endpoint.AdvanceResponse, error) {
	resp, err := l.endpoints.Advance(l.ctx(ctx), req)
	if err != nil {
		return nil, err
	}
	return resp.(*endpoint.AdvanceResponse), nil
}

// GetDraft loads one of the identity's drafts.
func (l *Local) GetDraft(ctx context.Context, id int64) (*endpoint.Draft, error) {
	resp, err := l.endpoints.GetDraft(l.ctx(ctx), &endpoint.DraftRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return resp.(*endpoint.Draft), nil
}

// Steps describes the wizard.
func (l *Local) Steps(ctx context.Context) (*endpoint.StepsResponse, error) {
	resp, err := l.endpoints.Steps(l.ctx(ctx), nil)
	if err != nil {
		return nil, err
	}
	return resp.(*endpoint.StepsResponse), nil
}
