package engine

import (
	"log/slog"

	"github.com/tatianab/chronicle/internal/models"
	"github.com/tatianab/chronicle/internal/state"
)

// Life expectancy by era, used to sanity-check the model's numbers when a
// new leader takes over.
var eraLifeExpectancy = map[string]int{
	"stone_age":   35,
	"bronze_age":  40,
	"iron_age":    45,
	"classical":   50,
	"medieval":    55,
	"renaissance": 60,
	"industrial":  65,
	"modern":      75,
}

const defaultLifeExpectancy = 50

// Deviation from the era value beyond which the model's life expectancy is
// considered implausible and corrected.
const lifeExpectancyTolerance = 25

func lifeExpectancyForEra(era string) int {
	if v, ok := eraLifeExpectancy[era]; ok {
		return v
	}
	return defaultLifeExpectancy
}

// applySuccessionPolicy runs after an apply cycle. When the cycle installed
// a new leader it resets the reign counter unless the batch set it
// explicitly, and corrects an implausible life expectancy for the current
// era.
func applySuccessionPolicy(docs map[string]models.Document, accepted []state.Edit, log *slog.Logger) {
	var namedNewLeader, setYearsRuled bool
	for _, edit := range accepted {
		switch edit.Path.Raw {
		case "civilization.leader.name":
			namedNewLeader = true
		case "civilization.leader.years_ruled":
			setYearsRuled = true
		}
	}
	if !namedNewLeader {
		return
	}

	civ := docs[models.RootCivilization]
	leader, ok := civ["leader"].(map[string]any)
	if !ok {
		return
	}

	if !setYearsRuled {
		leader["years_ruled"] = 0
		log.Info("new leader installed, reign counter reset", "leader", leader["name"])
	}

	era := models.StringAt(civ, "meta", "era")
	expected := lifeExpectancyForEra(era)
	current := models.IntAt(civ, "leader", "life_expectancy")
	if current < expected-lifeExpectancyTolerance || current > expected+lifeExpectancyTolerance {
		leader["life_expectancy"] = expected
		log.Info("corrected implausible life expectancy", "era", era, "was", current, "now", expected)
	}
}
