package schema

import "encoding/json"

// QueryRequest is the schema of the body of POST /v1.0/user/devices/query
var QueryRequest = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["devices"],
	"properties": {
		"devices": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"custom_data": {}
				}
			}
		}
	}
}`)

// ActionRequest is the schema of the body of POST /v1.0/user/devices/action
var ActionRequest = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["payload"],
	"properties": {
		"payload": {
			"type": "object",
			"required": ["devices"],
			"properties": {
				"devices": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["id", "capabilities"],
						"properties": {
							"id": {"type": "string", "minLength": 1},
							"custom_data": {},
							"capabilities": {
								"type": "array",
								"items": {
									"type": "object",
									"required": ["type", "state"],
									"properties": {
										"type": {"type": "string", "pattern": "^devices\\.capabilities\\."},
										"state": {
											"type": "object",
											"required": ["instance", "value"],
											"properties": {
												"instance": {"type": "string"},
												"value": {},
												"relative": {"type": "boolean"}
											}
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`)
