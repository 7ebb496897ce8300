package assistant

// JSON schemas for the structured responses the core asks for. Strict mode
// requires every property listed and additionalProperties disabled.

func coordinatesSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"lat", "lng"},
		"properties": map[string]any{
			"lat": map[string]any{"type": "number"},
			"lng": map[string]any{"type": "number"},
		},
	}
}

func stageSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"period", "title", "description", "cost", "accessible", "coordinates", "avg_duration"},
		"properties": map[string]any{
			"period":       map[string]any{"type": "string"},
			"title":        map[string]any{"type": "string"},
			"description":  map[string]any{"type": "string"},
			"cost":         map[string]any{"type": "string"},
			"accessible":   map[string]any{"type": "boolean"},
			"coordinates":  coordinatesSchema(),
			"avg_duration": map[string]any{"type": "integer"},
		},
	}
}

// ItinerarySchema constrains the answer to a single day plan with its
// ordered stage list.
func ItinerarySchema() Schema {
	return Schema{
		Name: "itinerary_day",
		Definition: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"itinerary"},
			"properties": map[string]any{
				"itinerary": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []string{"day", "title", "stages"},
						"properties": map[string]any{
							"day":    map[string]any{"type": "integer"},
							"title":  map[string]any{"type": "string"},
							"stages": map[string]any{"type": "array", "items": stageSchema()},
						},
					},
				},
			},
		},
	}
}

func CityDescriptionSchema() Schema {
	return Schema{
		Name: "city_description",
		Definition: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"name", "country", "description", "lat", "lng"},
			"properties": map[string]any{
				"name":        map[string]any{"type": "string"},
				"country":     map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"lat":         map[string]any{"type": "number"},
				"lng":         map[string]any{"type": "number"},
			},
		},
	}
}

func docsDetailSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name", "description", "done"},
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"done":        map[string]any{"type": "boolean"},
		},
	}
}

// DocsSchema constrains the answer to mandatory/recommended checklists.
func DocsSchema() Schema {
	return Schema{
		Name: "itinerary_docs",
		Definition: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"docs"},
			"properties": map[string]any{
				"docs": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []string{"mandatory", "recommended"},
						"properties": map[string]any{
							"mandatory":   map[string]any{"type": "array", "items": docsDetailSchema()},
							"recommended": map[string]any{"type": "array", "items": docsDetailSchema()},
						},
					},
				},
			},
		},
	}
}
