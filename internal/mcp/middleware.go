package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/costadvisor/internal/transport"
)

type contextKey int

const userIDKey contextKey = iota

var errUnauthorized = errors.New("unauthorized")

// getUserID extracts the acting user from context.
func getUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// authMiddleware resolves the bearer session token on tool calls.
func authMiddleware(resolver transport.SessionResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Handshake, discovery and docs stay open.
			if method != "tools/call" {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("%w: missing headers", errUnauthorized)
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("%w: missing bearer token", errUnauthorized)
			}
			if resolver == nil {
				return nil, fmt.Errorf("%w: no session resolver", errUnauthorized)
			}

			res, err := resolver.CurrentSession(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errUnauthorized, err)
			}

			ctx = context.WithValue(ctx, userIDKey, res.User.ID)
			return next(ctx, method, req)
		}
	}
}

// defaultUserMiddleware injects a fixed user for the stdio transport.
func defaultUserMiddleware(userID string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, userIDKey, userID)
			return next(ctx, method, req)
		}
	}
}
