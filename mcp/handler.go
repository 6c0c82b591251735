// Package mcp exposes bucketfs operations as MCP tools for coding agents.
package mcp

import (
	"context"

	"github.com/viant/jsonrpc/transport"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/logger"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/bucketfs/service"
)

type Handler struct {
	*protoserver.DefaultHandler
	service    *service.Service
	ops        protoclient.Operations
	metricsLog bool
}

// NewHandler returns a handler factory binding every tool to the shared
// service instance.
func NewHandler(svc *service.Service, metricsLog bool) protoserver.NewHandler {
	return func(_ context.Context, notifier transport.Notifier, logger logger.Logger, clientOperation protoclient.Operations) (protoserver.Handler, error) {
		base := protoserver.NewDefaultHandler(notifier, logger, clientOperation)
		h := &Handler{
			DefaultHandler: base,
			service:        svc,
			ops:            clientOperation,
			metricsLog:     metricsLog,
		}
		if err := registerTools(base.Registry, h); err != nil {
			return nil, err
		}
		return h, nil
	}
}
