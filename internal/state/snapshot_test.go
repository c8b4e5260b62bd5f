package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureSettlement(t *testing.T) {
	snap := CaptureSettlement(testDocs())
	assert.Equal(t, 150, snap.Population)
	assert.Equal(t, "stone_age", snap.Era)
	assert.Equal(t, []string{"Granary"}, snap.Infrastructure)
	assert.False(t, snap.Zero())
}

func TestSettlementChangedInitial(t *testing.T) {
	changed, reason := SettlementChanged(SettlementSnapshot{}, CaptureSettlement(testDocs()))
	require.True(t, changed)
	assert.Equal(t, "initial settlement generation", reason)
}

func TestSettlementChangedEra(t *testing.T) {
	prev := CaptureSettlement(testDocs())
	cur := prev
	cur.Era = "bronze_age"
	changed, reason := SettlementChanged(prev, cur)
	require.True(t, changed)
	assert.Contains(t, reason, "era change")
}

func TestSettlementChangedSizeCategory(t *testing.T) {
	prev := CaptureSettlement(testDocs()) // 150 people, a village
	cur := prev

	cur.Population = 400 // still a village
	changed, _ := SettlementChanged(prev, cur)
	assert.False(t, changed)

	cur.Population = 600 // now a town
	changed, reason := SettlementChanged(prev, cur)
	require.True(t, changed)
	assert.Contains(t, reason, "village -> town")
}

func TestSettlementChangedLandmark(t *testing.T) {
	prev := CaptureSettlement(testDocs())
	cur := prev

	// Ordinary infrastructure does not trigger regeneration.
	cur.Infrastructure = []string{"Granary", "Irrigation Canals"}
	changed, _ := SettlementChanged(prev, cur)
	assert.False(t, changed)

	cur.Infrastructure = []string{"Granary", "Great Temple"}
	changed, reason := SettlementChanged(prev, cur)
	require.True(t, changed)
	assert.Equal(t, "landmark completed: Great Temple", reason)
}

func TestSettlementUnchanged(t *testing.T) {
	prev := CaptureSettlement(testDocs())
	changed, reason := SettlementChanged(prev, prev)
	assert.False(t, changed)
	assert.Equal(t, "no significant changes", reason)
}

func TestSettlementSizeCategories(t *testing.T) {
	cases := map[int]string{
		50:    "camp",
		150:   "village",
		1500:  "town",
		9000:  "city",
		20000: "metropolis",
	}
	for population, want := range cases {
		assert.Equal(t, want, settlementSizeCategory(population))
	}
}
