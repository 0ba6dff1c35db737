package jwtauth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const grpcStage = "grpc_authenticate"

// UnaryServerInterceptor returns a gRPC unary server interceptor that applies
// the authentication gate to the "authorization" metadata entry
func UnaryServerInterceptor(cfg *Config) grpc.UnaryServerInterceptor {
	codec := NewCodec(cfg)

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()

		requestID := requestIDFromMetadata(ctx)

		var token string
		claims, err := func() (*Claims, error) {
			md, ok := metadata.FromIncomingContext(ctx)
			if !ok {
				return nil, NewValidationError(ErrMissingCredential, msgMissingHeader, nil)
			}
			var err error
			token, err = extractTokenFromMetadata(md)
			if err != nil {
				return nil, err
			}
			return authenticateAccess(codec, token)
		}()
		if err != nil {
			logSecurityEvent(cfg.logger, newFailureEvent(grpcStage, requestID, token, err, time.Since(startTime)))
			cfg.metrics.gateRejected(err)
			return nil, status.Error(codes.Unauthenticated, clientMessage(err))
		}

		ctx = WithClaims(ctx, claims)
		ctx = WithRequestID(ctx, requestID)

		logSecurityEvent(cfg.logger, newSuccessEvent(grpcStage, requestID, token, claims, time.Since(startTime)))
		cfg.metrics.gateAllowed()

		return handler(ctx, req)
	}
}

// requestIDFromMetadata reads x-request-id from incoming metadata or generates one
func requestIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("x-request-id"); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return uuid.New().String()
}
