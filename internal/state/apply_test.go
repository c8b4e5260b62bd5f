package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/chronicle/internal/models"
)

func mustEdit(t *testing.T, raw string, value any) Edit {
	t.Helper()
	p, err := ParsePath(raw)
	require.NoError(t, err)
	return Edit{Path: p, Value: value}
}

// validateAndApply runs the full cycle the way callers do.
func validateAndApply(t *testing.T, docs map[string]models.Document, mode Mode, updates map[string]any) (Result, Report) {
	t.Helper()
	res := Validate(docs, mode, updates)
	rep := Apply(docs, mode, res.Accepted)
	return res, rep
}

func TestApplyTurnIncrementsNumbers(t *testing.T) {
	docs := map[string]models.Document{
		"corporation": {"budget": 1000000},
	}
	res, rep := validateAndApply(t, docs, ModeTurn, map[string]any{"corporation.budget": 50000})
	require.True(t, res.OK())
	require.Len(t, rep.Applied, 1)
	assert.Equal(t, OpIncrement, rep.Applied[0].Op)
	assert.Equal(t, 1050000, docs["corporation"]["budget"])
}

func TestApplyTimeskipReplacesNumbers(t *testing.T) {
	docs := map[string]models.Document{
		"corporation": {"budget": 1000000},
	}
	res, rep := validateAndApply(t, docs, ModeTimeskip, map[string]any{"corporation.budget": 50000})
	require.True(t, res.OK())
	require.Len(t, rep.Applied, 1)
	assert.Equal(t, OpReplace, rep.Applied[0].Op)
	assert.Equal(t, 50000, docs["corporation"]["budget"])
}

func TestApplyModeChangesOperationForSamePath(t *testing.T) {
	docs := testDocs() // population 150
	_, _ = validateAndApply(t, docs, ModeTurn, map[string]any{"civilization.population": 10})
	assert.Equal(t, 160, models.IntAt(docs["civilization"], "population"))

	_, _ = validateAndApply(t, docs, ModeTimeskip, map[string]any{"civilization.population": 10})
	assert.Equal(t, 10, models.IntAt(docs["civilization"], "population"))
}

func TestApplyTurnReplacesNonNumeric(t *testing.T) {
	docs := testDocs()
	_, rep := validateAndApply(t, docs, ModeTurn, map[string]any{"civilization.meta.era": "bronze_age"})
	require.Len(t, rep.Applied, 1)
	assert.Equal(t, OpReplace, rep.Applied[0].Op)
	assert.Equal(t, "bronze_age", models.StringAt(docs["civilization"], "meta", "era"))
}

func TestApplyAppendIdempotent(t *testing.T) {
	docs := testDocs()

	res, _ := validateAndApply(t, docs, ModeTurn, map[string]any{"culture.traditions.append": "Harvest Feast"})
	require.True(t, res.OK())
	assert.Equal(t, []any{"Harvest Feast"}, docs["culture"]["traditions"])

	// The second identical append is rejected with a duplicate reason and
	// the sequence stays at length one.
	res, rep := validateAndApply(t, docs, ModeTurn, map[string]any{"culture.traditions.append": "Harvest Feast"})
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, ReasonDuplicateOrOverflow, res.Rejections[0].Reason)
	assert.Empty(t, rep.Applied)
	assert.Equal(t, []any{"Harvest Feast"}, docs["culture"]["traditions"])
}

func TestApplyAppendRecordNotDeduplicated(t *testing.T) {
	docs := testDocs()
	rec := map[string]any{"name": "Sea Folk", "relationship": "neutral"}

	for i := 0; i < 2; i++ {
		res, _ := validateAndApply(t, docs, ModeTurn, map[string]any{"world.known_peoples.append": rec})
		require.True(t, res.OK())
	}
	assert.Len(t, docs["world"]["known_peoples"], 3)
}

func TestApplyIndexedAssignment(t *testing.T) {
	docs := testDocs()
	_, rep := validateAndApply(t, docs, ModeTurn, map[string]any{"technology.infrastructure[0]": "Stone Granary"})
	require.Len(t, rep.Applied, 1)
	assert.Equal(t, OpIndexedSet, rep.Applied[0].Op)
	assert.Equal(t, "Granary", rep.Applied[0].Old)
	assert.Equal(t, []any{"Stone Granary"}, docs["technology"]["infrastructure"])
}

func TestApplyIndexedIntermediate(t *testing.T) {
	docs := testDocs()
	_, rep := validateAndApply(t, docs, ModeTurn, map[string]any{"world.known_peoples[0].relationship": "friendly"})
	require.Len(t, rep.Applied, 1)
	peoples := docs["world"]["known_peoples"].([]any)
	assert.Equal(t, "friendly", peoples[0].(map[string]any)["relationship"])
}

func TestApplySkipsVanishedKeyAndContinues(t *testing.T) {
	docs := testDocs()
	edits := []Edit{
		mustEdit(t, "civilization.resources.food", 100),
		mustEdit(t, "civilization.vanished", 1), // never validated, simulates drift
		mustEdit(t, "civilization.resources.wealth", 100),
	}
	rep := Apply(docs, ModeTurn, edits)

	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, SkipTraversal, rep.Skipped[0].Reason)
	assert.Len(t, rep.Applied, 2)
	assert.Equal(t, 600, models.IntAt(docs["civilization"], "resources", "food"))
	assert.Equal(t, 200, models.IntAt(docs["civilization"], "resources", "wealth"))
}

func TestApplySkipsIndexOutOfRange(t *testing.T) {
	docs := testDocs()
	rep := Apply(docs, ModeTurn, []Edit{mustEdit(t, "technology.infrastructure[7]", "X")})
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, SkipIndexOutOfRange, rep.Skipped[0].Reason)
}

func TestBatchResilience(t *testing.T) {
	docs := testDocs()
	updates := map[string]any{
		"civilization.population":             50,
		"civilization.resources.food":         100,
		"civilization.resources.wealth":       100,
		"civilization.leader.age":             1,
		"civilization.meta..broken":           1, // malformed
		"civilization.meta.era":               "bronze_age",
		"culture.traditions.append":           "Harvest Feast",
		"technology.discoveries.append":       "Bronze Working",
		"religion.practices.append":           "Dawn Chant",
		"world.known_peoples[0].relationship": "friendly",
	}
	res, rep := validateAndApply(t, docs, ModeTurn, updates)

	require.Len(t, res.Rejections, 1)
	assert.Equal(t, ReasonMalformedPath, res.Rejections[0].Reason)
	assert.Len(t, rep.Applied, 9)
	assert.Empty(t, rep.Skipped)
}

func TestGrowthLimitsPruneTrackedSequences(t *testing.T) {
	docs := testDocs()

	values := make([]any, 18)
	for i := range values {
		values[i] = fmt.Sprintf("value-%d", i)
	}
	docs["culture"]["values"] = values

	traditions := make([]any, 30)
	for i := range traditions {
		traditions[i] = fmt.Sprintf("tradition-%d", i)
	}
	docs["culture"]["traditions"] = traditions

	discoveries := make([]any, 25)
	for i := range discoveries {
		discoveries[i] = fmt.Sprintf("discovery-%d", i)
	}
	docs["technology"]["discoveries"] = discoveries

	res, rep := validateAndApply(t, docs, ModeTurn, map[string]any{"culture.values.append": "newest"})
	require.True(t, res.OK())

	got := docs["culture"]["values"].([]any)
	assert.Len(t, got, 15)
	// Pruning keeps the newest entries: the fresh append survives.
	assert.Equal(t, "newest", got[14])

	assert.Len(t, docs["culture"]["traditions"], 15)
	assert.Equal(t, "tradition-29", docs["culture"]["traditions"].([]any)[14])
	assert.Len(t, docs["technology"]["discoveries"], 20)

	require.Len(t, rep.Pruned, 3)
}

func TestGrowthLimitsHoldAfterAnyCycle(t *testing.T) {
	docs := testDocs()
	for i := 0; i < 40; i++ {
		updates := map[string]any{
			"culture.values.append":         fmt.Sprintf("value-%d", i),
			"technology.discoveries.append": fmt.Sprintf("discovery-%d", i),
		}
		validateAndApply(t, docs, ModeTurn, updates)
	}
	assert.LessOrEqual(t, len(docs["culture"]["values"].([]any)), 15)
	assert.LessOrEqual(t, len(docs["technology"]["discoveries"].([]any)), 20)
}
