// Package jwtauth issues and verifies HS256 access/refresh token pairs and
// guards routes with ordered gate chains.
//
// HTTP routes compose gates with gin:
//
//	auth := jwtauth.Authenticate(codec)
//	r.PUT("/cafes/:cafeId", jwtauth.NewGateChain(cfg, auth, jwtauth.OwnerFromBody("ownerId")).Middleware(), handler)
//
// gRPC servers run the authentication gate as a unary interceptor:
//
//	srv := grpc.NewServer(grpc.UnaryInterceptor(jwtauth.UnaryServerInterceptor(cfg)))
package jwtauth
