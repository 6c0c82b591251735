package mcp

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
)

//go:embed tools/read.md
var descRead string

//go:embed tools/list.md
var descList string

//go:embed tools/find.md
var descFind string

//go:embed tools/filter.md
var descFilter string

//go:embed tools/grep.md
var descGrep string

//go:embed tools/cache.md
var descCache string

func registerTools(registry *protoserver.Registry, h *Handler) error {
	if err := protoserver.RegisterTool[*ReadInput, *ReadOutput](registry, "read", descRead, func(ctx context.Context, in *ReadInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.read(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*ListInput, *ListOutput](registry, "list", descList, func(ctx context.Context, in *ListInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.list(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*FindInput, *FindOutput](registry, "findFiles", descFind, func(ctx context.Context, in *FindInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.findFiles(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*FilterInput, *FilterOutput](registry, "filterFiles", descFilter, func(ctx context.Context, in *FilterInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.filterFiles(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*GrepInput, *GrepOutput](registry, "grepFiles", descGrep, func(ctx context.Context, in *GrepInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.grepFiles(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*CacheInput, *CacheOutput](registry, "cache", descCache, func(ctx context.Context, in *CacheInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.cacheOp(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	return nil
}

func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildSuccessResult(payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	b, _ := json.Marshal(payload)
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: string(b)},
		},
		StructuredContent: map[string]any{"result": payload},
	}, nil
}
