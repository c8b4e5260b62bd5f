package models

import "github.com/google/uuid"

// Default payloads used when a document file is missing on first load and
// when the game is reset. Sequences are []any and nested records are
// map[string]any so fresh defaults have the same shape as YAML-decoded
// documents.

func defaultCivilization() Document {
	return Document{
		"meta": map[string]any{
			"name":       "The River People",
			"era":        "stone_age",
			"year":       1,
			"world_mode": "fantasy",
		},
		"population": 150,
		"resources": map[string]any{
			"food":   500,
			"wealth": 100,
		},
		"leader": map[string]any{
			"name":            "Asha",
			"age":             32,
			"years_ruled":     0,
			"life_expectancy": 35,
			"traits":          []any{"Wise", "Brave"},
		},
	}
}

func defaultCulture() Document {
	return Document{
		"values":     []any{"Community", "Endurance"},
		"traditions": []any{"River Festival"},
		"taboos":     []any{},
	}
}

func defaultReligion() Document {
	return Document{
		"name":        "The Old Ways",
		"practices":   []any{"Offerings at the river"},
		"core_tenets": []any{"The river gives and takes"},
		"holy_sites":  []any{},
	}
}

func defaultTechnology() Document {
	return Document{
		"discoveries":    []any{"Fire", "Stone Tools"},
		"infrastructure": []any{},
	}
}

func defaultWorld() Document {
	return Document{
		"climate": "temperate",
		"terrain": "river valley",
		"known_peoples": []any{
			map[string]any{
				"name":         "The Hill Clans",
				"relationship": "neutral",
			},
		},
	}
}

func defaultHistoryLong() Document {
	return Document{"events": []any{}}
}

func defaultHistoryCompressed() Document {
	return Document{"eras": []any{}}
}

func defaultMetadata() Metadata {
	return Metadata{
		GameID:              uuid.NewString(),
		TurnNumber:          0,
		ActivePolicy:        "",
		PopulationHappiness: 70,
	}
}
