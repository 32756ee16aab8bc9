package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/getmockd/specdocs/pkg/endpoint"
	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/query"
	"github.com/getmockd/specdocs/pkg/util"
)

// DefaultServerInfo returns the identity reported by initialize when the
// configuration leaves it unset.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "specdocs",
		Version:     "1.0.0",
		Description: "API documentation via JSON-RPC",
	}
}

// Observer is notified after every handled call. code is the JSON-RPC error
// code, or 0 on success. method is "unknown" for unsupported or unparsable
// requests.
type Observer interface {
	ObserveCall(method string, code int, elapsed time.Duration)
}

// Dispatcher routes decoded calls to the query service. It is shared by the
// HTTP and stdio transports and is safe for concurrent use.
type Dispatcher struct {
	svc      *query.Service
	info     ServerInfo
	log      *slog.Logger
	observer Observer
}

// NewDispatcher creates a Dispatcher. Empty info fields take their defaults.
func NewDispatcher(svc *query.Service, info ServerInfo) *Dispatcher {
	def := DefaultServerInfo()
	if info.Name == "" {
		info.Name = def.Name
	}
	if info.Version == "" {
		info.Version = def.Version
	}
	if info.Description == "" {
		info.Description = def.Description
	}
	return &Dispatcher{svc: svc, info: info, log: logging.Nop()}
}

// SetLogger sets the operational logger.
func (d *Dispatcher) SetLogger(log *slog.Logger) {
	if log != nil {
		d.log = log
	}
}

// SetObserver sets the call observer. Set it before serving.
func (d *Dispatcher) SetObserver(o Observer) {
	d.observer = o
}

// Info returns the server identity.
func (d *Dispatcher) Info() ServerInfo { return d.info }

// HandleBytes parses and handles one raw message.
func (d *Dispatcher) HandleBytes(ctx context.Context, data []byte) *JSONRPCResponse {
	start := time.Now()
	req, rpcErr := ParseRequestBytes(data)
	if rpcErr != nil {
		logging.FromContext(ctx, d.log).Debug("request rejected",
			"code", rpcErr.Code, "body", util.TruncateBody(string(data), 512))
		d.observe("", rpcErr.Code, start)
		return ErrorResponse(nil, rpcErr)
	}
	return d.Handle(ctx, req)
}

// Handle answers a validated request. It always returns a response; the id is
// echoed from the request.
func (d *Dispatcher) Handle(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	start := time.Now()
	resp := d.handle(ctx, req)
	code := 0
	if resp.Error != nil {
		code = resp.Error.Code
	}
	d.observe(req.Method, code, start)
	return resp
}

func (d *Dispatcher) observe(method string, code int, start time.Time) {
	if d.observer == nil {
		return
	}
	if _, ok := ParseMethod(method); !ok {
		method = "unknown"
	}
	d.observer.ObserveCall(method, code, time.Since(start))
}

func (d *Dispatcher) handle(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	log := logging.FromContext(ctx, d.log)

	call, rpcErr := DecodeCall(req)
	if rpcErr != nil {
		log.Debug("request rejected", "method", req.Method, "code", rpcErr.Code)
		return ErrorResponse(req.ID, rpcErr)
	}

	result, err := d.dispatch(ctx, call)
	if err != nil {
		rpcErr := ErrorFor(err)
		if rpcErr.Code == ErrCodeInternalError {
			log.Error("request failed", "method", req.Method, "error", err)
		} else {
			log.Debug("request failed", "method", req.Method, "code", rpcErr.Code, "error", err)
		}
		return ErrorResponse(req.ID, rpcErr)
	}
	return SuccessResponse(req.ID, result)
}

func (d *Dispatcher) dispatch(ctx context.Context, call Call) (interface{}, error) {
	switch c := call.(type) {
	case InitializeCall:
		return &InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    ServerCapabilities{Tools: ToolsCapability{ListChanged: false}},
			ServerInfo:      d.info,
		}, nil
	case ListToolsCall:
		return &ToolsListResult{Tools: allToolDefinitions()}, nil
	case SchemaCall:
		return d.svc.Schema(ctx, c.Section)
	case EndpointCall:
		return d.svc.Endpoint(ctx, c.Path, c.HTTPMethod)
	case ListEndpointsCall:
		return d.svc.Endpoints(ctx, endpoint.Filter{Tag: c.Tag, PathGlob: c.Path})
	case MockCall:
		status := query.DefaultStatusCode
		if c.StatusCode != nil {
			status = *c.StatusCode
		}
		return d.svc.Mock(ctx, c.Path, c.HTTPMethod, status)
	case QueryCall:
		return d.svc.Query(ctx, c.Expression)
	default:
		return nil, MethodNotFoundError(string(call.Method()))
	}
}
