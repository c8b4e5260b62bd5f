package state

import (
	"fmt"
	"slices"

	"github.com/tatianab/chronicle/internal/models"
)

// SettlementSnapshot captures the parts of the state that drive the
// settlement illustration. Callers hold the snapshot taken after the last
// regeneration and compare it against a fresh one after each apply cycle;
// there is no hidden tracker state.
type SettlementSnapshot struct {
	Population     int
	Era            string
	Infrastructure []string
}

// landmarks are the infrastructure entries whose completion alone justifies
// a new settlement illustration.
var landmarks = []string{"Walls", "Great Temple", "Grand Market", "Palace", "Observatory"}

// CaptureSettlement reads the settlement-relevant fields from the documents.
func CaptureSettlement(docs map[string]models.Document) SettlementSnapshot {
	return SettlementSnapshot{
		Population:     models.IntAt(docs[models.RootCivilization], "population"),
		Era:            models.StringAt(docs[models.RootCivilization], "meta", "era"),
		Infrastructure: models.StringsAt(docs[models.RootTechnology], "infrastructure"),
	}
}

// Zero reports whether the snapshot has never been populated.
func (s SettlementSnapshot) Zero() bool {
	return s.Population == 0 && s.Era == "" && len(s.Infrastructure) == 0
}

// SettlementChanged is a pure predicate deciding whether the settlement
// illustration should be regenerated, with a human-readable reason. It acts
// on nothing; the caller decides what to do with the answer.
func SettlementChanged(prev, cur SettlementSnapshot) (bool, string) {
	if prev.Zero() {
		return true, "initial settlement generation"
	}
	if cur.Era != prev.Era {
		return true, fmt.Sprintf("era change: %s -> %s", prev.Era, cur.Era)
	}
	if c, p := settlementSizeCategory(cur.Population), settlementSizeCategory(prev.Population); c != p {
		return true, fmt.Sprintf("settlement growth: %s -> %s", p, c)
	}
	for _, name := range cur.Infrastructure {
		if slices.Contains(landmarks, name) && !slices.Contains(prev.Infrastructure, name) {
			return true, fmt.Sprintf("landmark completed: %s", name)
		}
	}
	return false, "no significant changes"
}

func settlementSizeCategory(population int) string {
	switch {
	case population < 100:
		return "camp"
	case population < 500:
		return "village"
	case population < 2000:
		return "town"
	case population < 10000:
		return "city"
	default:
		return "metropolis"
	}
}
