package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/coursewizard/internal/endpoint"
)

// Advance implements the Advance RPC.
func (s *Server) Advance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := &endpoint.AdvanceRequest{}
	if err := endpoint.FromStruct(in, req); err != nil {
		return nil, endpoint.MapErrorToStatus(err)
	}
	return s.call(ctx, s.endpoints.Advance, req)
}

// GetDraft implements the GetDraft RPC.
func (s *Server) GetDraft(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := &endpoint.DraftRequest{}
	if err := endpoint.FromStruct(in, req); err != nil {
		return nil, endpoint.MapErrorToStatus(err)
	}
	return s.call(ctx, s.endpoints.GetDraft, req)
}

// Steps implements the Steps RPC.
func (s *Server) Steps(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, s.endpoints.Steps, nil)
}

func (s *Server) call(ctx context.Context, ep endpoint.Endpoint, req any) (*structpb.Struct, error) {
	resp, err := ep(ctx, req)
	if err != nil {
		return nil, endpoint.MapErrorToStatus(err)
	}
	out, err := endpoint.ToStruct(resp)
	if err != nil {
		return nil, endpoint.MapErrorToStatus(err)
	}
	return out, nil
}
