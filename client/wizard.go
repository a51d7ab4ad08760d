// Package client provides backends for the wizard session driver: a gRPC
// client for a remote wizardd and an in-process adapter over the endpoints.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/coursewizard/internal/endpoint"
	grpctransport "github.com/example/coursewizard/internal/transport/grpc"
)

// Wizard talks to a wizard server over gRPC. Server errors are mapped back
// to the domain sentinels, so errors.Is works as it does in-process.
type Wizard struct {
	conn  grpc.ClientConnInterface
	close func() error
	token string
}

// Dial connects to the server at addr without transport security.
func Dial(addr, token string) (*Wizard, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	w := New(conn, token)
	w.close = conn.Close
	return w, nil
}

// New wraps an existing connection. The caller keeps ownership of conn.
func New(conn grpc.ClientConnInterface, token string) *Wizard {
	return &Wizard{conn: conn, token: token}
}

// Close releases the connection when it was opened by Dial.
func (w *Wizard) Close() error {
	if w.close == nil {
		return nil
	}
	return w.close()
}

// Advance submits one step.
func (w *Wizard) Advance(ctx context.Context, req *endpoint.AdvanceRequest) (*endpoint.AdvanceResponse, error) {
	resp := &endpoint.AdvanceResponse{}
	if err := w.invoke(ctx, grpctransport.AdvanceMethod, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetDraft loads one of the caller's drafts.
func (w *Wizard) GetDraft(ctx context.Context, id int64) (*endpoint.Draft, error) {
	resp := &endpoint.Draft{}
	if err := w.invoke(ctx, grpctransport.GetDraftMethod, &endpoint.DraftRequest{ID: id}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Steps describes the wizard served by the server.
func (w *Wizard) Steps(ctx context.Context) (*endpoint.StepsResponse, error) {
	resp := &endpoint.StepsResponse{}
	if err := w.invoke(ctx, grpctransport.StepsMethod, struct{}{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (w *Wizard) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := endpoint.ToStruct(req)
	if err != nil {
		return err
	}
	if w.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+w.token)
	}

	out := &structpb.Struct{}
	if err := w.conn.Invoke(ctx, method, in, out); err != nil {
		return endpoint.ErrorFromStatus(err)
	}
	return endpoint.FromStruct(out, resp)
}
