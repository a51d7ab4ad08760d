package endpoint

import (
	"context"
	"fmt"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/service"
)

// Endpoint is a function that takes a request and returns a response.
type Endpoint func(ctx context.Context, request any) (response any, err error)

// Endpoints holds all endpoint handlers.
type Endpoints struct {
	Advance        Endpoint
	GetDraft       Endpoint
	Steps          Endpoint
	ExportUserData Endpoint
	DeleteUserData Endpoint
	DeleteScope    Endpoint
}

// MakeEndpoints creates all endpoints from the service. Every endpoint reads
// the caller from the context; see auth.NewContext.
func MakeEndpoints(svc *service.WizardService) Endpoints {
	return Endpoints{
		Advance:        makeAdvanceEndpoint(svc),
		GetDraft:       makeGetDraftEndpoint(svc),
		Steps:          makeStepsEndpoint(svc),
		ExportUserData: makeExportUserDataEndpoint(svc),
		DeleteUserData: makeDeleteUserDataEndpoint(svc),
		DeleteScope:    makeDeleteScopeEndpoint(svc),
	}
}

func caller(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

func makeAdvanceEndpoint(svc *service.WizardService) Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*AdvanceRequest)
		if err := validateAdvanceRequest(req); err != nil {
			return nil, err
		}
		owner, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		result, err := svc.Advance(ctx, &service.AdvanceRequest{
			DraftID:         req.DraftID,
			Step:            req.Step,
			Scope:           req.Scope,
			Owner:           owner,
			Action:          domain.Action(req.Action),
			Fields:          req.Fields,
			ExpectedVersion: req.Version,
		})
		if err != nil {
			return nil, err
		}
		return fromTransition(result), nil
	}
}

func makeGetDraftEndpoint(svc *service.WizardService) Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*DraftRequest)
		if req.ID <= 0 {
			return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidArgument)
		}
		owner, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		d, err := svc.GetDraft(ctx, owner, req.ID)
		if err != nil {
			return nil, err
		}
		draft := FromDraft(d)
		return &draft, nil
	}
}

func makeStepsEndpoint(svc *service.WizardService) Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		return fromTable(svc.Steps()), nil
	}
}

func makeExportUserDataEndpoint(svc *service.WizardService) Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*PrivacyRequest)
		if err := validatePrivacyRequest(req); err != nil {
			return nil, err
		}
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		drafts, err := svc.ExportUserData(ctx, id, req.Owner, req.Scope)
		if err != nil {
			return nil, err
		}
		resp := &ExportResponse{Drafts: make([]Draft, 0, len(drafts))}
		for _, d := range drafts {
			resp.Drafts = append(resp.Drafts, FromDraft(d))
		}
		return resp, nil
	}
}

func makeDeleteUserDataEndpoint(svc *service.WizardService) Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*PrivacyRequest)
		if err := validatePrivacyRequest(req); err != nil {
			return nil, err
		}
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		n, err := svc.DeleteUserData(ctx, id, req.Owner, req.Scope)
		if err != nil {
			return nil, err
		}
		return &DeleteResponse{Deleted: n}, nil
	}
}

func makeDeleteScopeEndpoint(svc *service.WizardService) Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		scope := request.(int64)
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		n, err := svc.DeleteScope(ctx, id, scope)
		if err != nil {
			return nil, err
		}
		return &DeleteResponse{Deleted: n}, nil
	}
}
