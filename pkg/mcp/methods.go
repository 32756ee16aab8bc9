package mcp

import "encoding/json"

// Method names a supported JSON-RPC method.
type Method string

// Supported methods. The set is closed; see DecodeCall.
const (
	MethodInitialize         Method = "initialize"
	MethodListTools          Method = "list_tools"
	MethodGetAPISchema       Method = "get_api_schema"
	MethodGetEndpointDetails Method = "get_endpoint_details"
	MethodListEndpoints      Method = "list_endpoints"
	MethodMockCall           Method = "mock_call"
	MethodQueryAPISchema     Method = "query_api_schema"
)

// Methods lists every supported method in the order tools are advertised.
var Methods = []Method{
	MethodInitialize,
	MethodListTools,
	MethodGetAPISchema,
	MethodGetEndpointDetails,
	MethodListEndpoints,
	MethodMockCall,
	MethodQueryAPISchema,
}

// ParseMethod resolves a method name. Names are case-sensitive.
func ParseMethod(name string) (Method, bool) {
	for _, m := range Methods {
		if string(m) == name {
			return m, true
		}
	}
	return "", false
}

// Call is a decoded request: one concrete type per Method.
type Call interface {
	Method() Method
	isCall()
}

// InitializeCall requests server info and capabilities.
type InitializeCall struct{}

// ListToolsCall requests the tool definitions.
type ListToolsCall struct{}

// SchemaCall requests the document or one top-level section of it.
type SchemaCall struct {
	Section string `json:"section"`
}

// EndpointCall requests the detail of one operation.
type EndpointCall struct {
	Path       string `json:"path"`
	HTTPMethod string `json:"method"`
}

// ListEndpointsCall requests the operation list.
type ListEndpointsCall struct {
	Tag  string `json:"tag"`
	Path string `json:"path"`
}

// MockCall requests a synthesized response body. A nil StatusCode means 200.
type MockCall struct {
	Path       string `json:"path"`
	HTTPMethod string `json:"method"`
	StatusCode *int   `json:"status_code"`
}

// QueryCall evaluates a JSONPath expression against the document.
type QueryCall struct {
	Expression string `json:"expression"`
}

func (InitializeCall) Method() Method    { return MethodInitialize }
func (ListToolsCall) Method() Method     { return MethodListTools }
func (SchemaCall) Method() Method        { return MethodGetAPISchema }
func (EndpointCall) Method() Method      { return MethodGetEndpointDetails }
func (ListEndpointsCall) Method() Method { return MethodListEndpoints }
func (MockCall) Method() Method          { return MethodMockCall }
func (QueryCall) Method() Method         { return MethodQueryAPISchema }

func (InitializeCall) isCall()    {}
func (ListToolsCall) isCall()     {}
func (SchemaCall) isCall()        {}
func (EndpointCall) isCall()      {}
func (ListEndpointsCall) isCall() {}
func (MockCall) isCall()          {}
func (QueryCall) isCall()         {}

// DecodeCall turns a validated request into its typed Call.
func DecodeCall(req *JSONRPCRequest) (Call, *JSONRPCError) {
	method, ok := ParseMethod(req.Method)
	if !ok {
		return nil, MethodNotFoundError(req.Method)
	}

	switch method {
	case MethodInitialize:
		return decodeCall[InitializeCall](req.Params)
	case MethodListTools:
		return decodeCall[ListToolsCall](req.Params)
	case MethodGetAPISchema:
		return decodeCall[SchemaCall](req.Params)
	case MethodGetEndpointDetails:
		return decodeCall[EndpointCall](req.Params)
	case MethodListEndpoints:
		return decodeCall[ListEndpointsCall](req.Params)
	case MethodMockCall:
		return decodeCall[MockCall](req.Params)
	case MethodQueryAPISchema:
		return decodeCall[QueryCall](req.Params)
	}
	return nil, MethodNotFoundError(req.Method)
}

func decodeCall[T Call](params json.RawMessage) (Call, *JSONRPCError) {
	c, err := UnmarshalParams[T](params)
	if err != nil {
		return nil, err
	}
	return *c, nil
}
