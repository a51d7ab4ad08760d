package grpc

import (
	"context"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/endpoint"
	"github.com/example/coursewizard/pkg/id"
)

// Server is the gRPC server for the Wizard service.
type Server struct {
	endpoints  endpoint.Endpoints
	tokens     *auth.Tokens
	grpcServer *grpc.Server
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithTokens enables bearer token authentication. Without it every call is
// anonymous.
func WithTokens(tokens *auth.Tokens) ServerOption {
	return func(s *Server) {
		s.tokens = tokens
	}
}

// NewServer creates a new gRPC server.
func NewServer(endpoints endpoint.Endpoints, opts ...ServerOption) *Server {
	s := &Server{
		endpoints: endpoints,
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	// Create gRPC server with interceptors
	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(),
			RecoveryInterceptor(),
			AuthInterceptor(s.tokens),
		),
	)

	s.grpcServer.RegisterService(&WizardServiceDesc, s)

	// Enable reflection for grpcurl and other tools
	reflection.Register(s.grpcServer)

	return s
}

// Serve starts the gRPC server on the given address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	log.Printf("gRPC server listening on %s", addr)
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop gracefully stops the server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

const requestIDKey = "x-request-id"

// LoggingInterceptor returns a gRPC interceptor that logs requests and their duration.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		var incoming string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDKey); len(v) > 0 {
				incoming = v[0]
			}
		}
		reqID := id.RequestID(incoming)

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		log.Printf("gRPC call: %s [req:%s] duration=%v", info.FullMethod, reqID, duration)
		if err != nil {
			log.Printf("gRPC error: %s [req:%s]: %v", info.FullMethod, reqID, err)
		}
		return resp, err
	}
}

// RecoveryInterceptor returns a gRPC interceptor that recovers from panics.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("gRPC panic recovered: %s: %v", info.FullMethod, r)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// AuthInterceptor verifies the bearer token in the authorization metadata
// and stores the identity in the context. Calls without a token continue
// anonymously; a token that fails verification is rejected.
func AuthInterceptor(tokens *auth.Tokens) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if tokens == nil {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return handler(ctx, req)
		}
		token, ok := auth.BearerToken(values[0])
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "malformed authorization metadata")
		}
		identity, err := tokens.Verify(token)
		if err != nil {
			return nil, endpoint.MapErrorToStatus(err)
		}
		return handler(auth.NewContext(ctx, identity), req)
	}
}
