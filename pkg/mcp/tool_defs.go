package mcp

// allToolDefinitions returns the tool definitions advertised by list_tools.
// The protocol methods initialize and list_tools are not tools.
func allToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		defGetAPISchema,
		defGetEndpointDetails,
		defListEndpoints,
		defMockCall,
		defQueryAPISchema,
	}
}

var defGetAPISchema = ToolDefinition{
	Name:        string(MethodGetAPISchema),
	Description: "Get the full OpenAPI schema or specific parts of it",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"section": map[string]interface{}{
				"type":        "string",
				"description": "Optional section to retrieve (paths, components, info, etc.)",
				"enum":        []string{"paths", "components", "info", "servers", "tags"},
			},
		},
	},
}

var defGetEndpointDetails = ToolDefinition{
	Name:        string(MethodGetEndpointDetails),
	Description: "Get detailed information about a specific API endpoint",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "The API path (e.g., /api/users/{id})",
			},
			"method": map[string]interface{}{
				"type":        "string",
				"description": "HTTP method",
				"enum":        []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			},
		},
		"required": []string{"path", "method"},
	},
}

var defListEndpoints = ToolDefinition{
	Name:        string(MethodListEndpoints),
	Description: "List all available API endpoints with basic information",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tag": map[string]interface{}{
				"type":        "string",
				"description": "Optional tag to filter endpoints",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Optional glob matched against the path (e.g., /api/users/**)",
			},
		},
	},
}

var defMockCall = ToolDefinition{
	Name:        string(MethodMockCall),
	Description: "Generate a mock response for an endpoint based on its schema",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "The API path",
			},
			"method": map[string]interface{}{
				"type":        "string",
				"description": "HTTP method",
			},
			"status_code": map[string]interface{}{
				"type":        "integer",
				"description": "HTTP status code for the mock response (default: 200)",
				"default":     200,
			},
		},
		"required": []string{"path", "method"},
	},
}

var defQueryAPISchema = ToolDefinition{
	Name:        string(MethodQueryAPISchema),
	Description: "Evaluate a JSONPath expression against the OpenAPI schema and return every match",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"expression": map[string]interface{}{
				"type":        "string",
				"description": "JSONPath expression (e.g., $.paths['/users'].get.tags)",
			},
		},
		"required": []string{"expression"},
	},
}
