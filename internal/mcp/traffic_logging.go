package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/costadvisor/internal/transport"
)

// Tool call outcomes recorded in traffic logs. A failed tool call is logged
// with its failure kind, e.g. "PERMISSION_DENIED".
const (
	outcomeOK       = "ok"
	outcomeProtocol = "protocol_error"
)

// trafficLoggingMiddleware logs each request and response at debug level,
// tagged with the acting user and, for tool calls, the tool and its outcome.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			params := requestParams(req)
			attrs := []any{
				"direction", direction,
				"method", method,
				"session_id", requestSessionID(req),
				"user_id", getUserID(ctx),
			}
			if tool := toolName(params); tool != "" {
				attrs = append(attrs, "tool", tool)
			}
			logger.Debug("mcp request", append(attrs, "params", formatPayload(params))...)

			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			if err != nil {
				logger.Debug("mcp response", append(attrs, "outcome", outcomeProtocol, "error", err)...)
				return result, err
			}
			if method == "tools/call" {
				attrs = append(attrs, "outcome", toolOutcome(result))
			}
			logger.Debug("mcp response", append(attrs, "result", formatPayload(result))...)
			return result, nil
		}
	}
}

// toolName returns the called tool for tools/call params.
func toolName(params any) string {
	if p, ok := params.(*sdkmcp.CallToolParamsRaw); ok && p != nil {
		return p.Name
	}
	return ""
}

// toolOutcome classifies a tool result using the failure body written by
// toolFailure.
func toolOutcome(result sdkmcp.Result) string {
	res, ok := result.(*sdkmcp.CallToolResult)
	if !ok || res == nil || !res.IsError {
		return outcomeOK
	}
	for _, c := range res.Content {
		text, ok := c.(*sdkmcp.TextContent)
		if !ok {
			continue
		}
		var apiErr transport.APIError
		if json.Unmarshal([]byte(text.Text), &apiErr) == nil && apiErr.Code != "" {
			return string(apiErr.Code)
		}
	}
	return string(transport.KindInternal)
}

// The SDK request accessors panic on partially built requests.
func requestSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if session := req.GetSession(); session != nil {
		return session.ID()
	}
	return ""
}

func requestParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
