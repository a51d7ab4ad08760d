package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/coursewizard/client"
	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/driver"
	"github.com/example/coursewizard/internal/endpoint"
	"github.com/example/coursewizard/internal/observability"
	"github.com/example/coursewizard/internal/service"
	"github.com/example/coursewizard/internal/steps"
	"github.com/example/coursewizard/internal/storage/sqlite"
	grpcTransport "github.com/example/coursewizard/internal/transport/grpc"
	"github.com/example/coursewizard/internal/web"
)

const course = 42

var (
	student    = auth.Identity{UserID: 10, Scopes: []int64{course}}
	instructor = auth.Identity{UserID: 20, Scopes: []int64{course}, Admin: true}
)

// TestEnv runs both transports over one database, the way wizardd does.
type TestEnv struct {
	Storage *sqlite.SQLiteStorage
	Metrics *observability.Metrics
	Tokens  *auth.Tokens

	GRPCAddr string
	HTTP     *httptest.Server

	t *testing.T
}

// NewTestEnv starts a gRPC server on a loopback port and the HTTP API on an
// httptest server. Both are stopped when the test ends.
func NewTestEnv(t *testing.T, table *steps.Table) *TestEnv {
	t.Helper()
	ctx := context.Background()

	metrics := observability.NewMetrics()
	store, err := sqlite.NewWithMetrics(filepath.Join(t.TempDir(), "wizard.db"), metrics)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	tokens, err := auth.NewTokens("e2e-secret")
	if err != nil {
		t.Fatal(err)
	}

	svc := service.NewWizard(store, table, auth.ClaimsAuthorizer{}, service.WithMetrics(metrics))
	endpoints := endpoint.MakeEndpoints(svc)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	grpcServer := grpcTransport.NewServer(endpoints, grpcTransport.WithTokens(tokens))
	go grpcServer.ServeListener(lis)

	webServer := web.NewServer(":0", endpoints, web.WithTokens(tokens), web.WithMetrics(metrics))
	httpServer := httptest.NewServer(webServer.Handler())

	t.Cleanup(func() {
		httpServer.Close()
		grpcServer.GracefulStop()
		store.Close()
	})

	return &TestEnv{
		Storage:  store,
		Metrics:  metrics,
		Tokens:   tokens,
		GRPCAddr: lis.Addr().String(),
		HTTP:     httpServer,
		t:        t,
	}
}

// Token issues a token for id.
func (e *TestEnv) Token(id auth.Identity) string {
	e.t.Helper()
	token, err := e.Tokens.Issue(id, time.Hour)
	if err != nil {
		e.t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// Client dials the gRPC server as id.
func (e *TestEnv) Client(id auth.Identity) *client.Wizard {
	e.t.Helper()
	w, err := client.Dial(e.GRPCAddr, e.Token(id))
	if err != nil {
		e.t.Fatalf("failed to dial: %v", err)
	}
	e.t.Cleanup(func() { w.Close() })
	return w
}

// Do sends a JSON request to the HTTP API as id and decodes the response
// into out when it is non-nil. It returns the status code.
func (e *TestEnv) Do(id auth.Identity, method, path string, body, out any) int {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.HTTP.URL+path, &buf)
	if err != nil {
		e.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.Token(id))

	resp, err := e.HTTP.Client().Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			e.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// scriptedPresenter replays inputs, then closes the wizard.
type scriptedPresenter struct {
	inputs []driver.Input
	shown  []int
}

func (p *scriptedPresenter) Present(_ context.Context, view driver.StepView) (driver.Input, error) {
	p.shown = append(p.shown, view.Step.Number)
	if len(p.inputs) == 0 {
		return driver.Input{}, driver.ErrClosed
	}
	in := p.inputs[0]
	p.inputs = p.inputs[1:]
	return in, nil
}

type quietNotifier struct {
	messages []string
}

func (n *quietNotifier) Notify(_ driver.Level, message string) {
	n.messages = append(n.messages, message)
}
