package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	g, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 150, IntAt(g.Civilization, "population"))
	assert.Equal(t, "stone_age", StringAt(g.Civilization, "meta", "era"))
	assert.Equal(t, 70, g.Meta.PopulationHappiness)
	_, err = uuid.Parse(g.Meta.GameID)
	assert.NoError(t, err)

	for _, name := range []string{
		fileCivilization, fileCulture, fileReligion, fileTechnology,
		fileWorld, fileHistoryLong, fileHistoryCompressed, fileMetadata,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected %s on disk", name)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	g, err := Load(dir)
	require.NoError(t, err)

	g.Civilization["population"] = 999
	g.Culture["values"] = []any{"Honor", "Craftsmanship"}
	g.Meta.TurnNumber = 7
	require.NoError(t, g.Save())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 999, IntAt(reloaded.Civilization, "population"))
	assert.Equal(t, []string{"Honor", "Craftsmanship"}, StringsAt(reloaded.Culture, "values"))
	assert.Equal(t, 7, reloaded.Meta.TurnNumber)
	assert.Equal(t, g.Meta.GameID, reloaded.Meta.GameID)
}

func TestResetToDefaultsIssuesNewGame(t *testing.T) {
	dir := t.TempDir()
	g, err := Load(dir)
	require.NoError(t, err)
	oldID := g.Meta.GameID

	g.Civilization["population"] = 5000
	g.Meta.TurnNumber = 42
	require.NoError(t, g.Save())

	require.NoError(t, g.ResetToDefaults())
	assert.Equal(t, 150, IntAt(g.Civilization, "population"))
	assert.Equal(t, 0, g.Meta.TurnNumber)
	assert.NotEqual(t, oldID, g.Meta.GameID)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 150, IntAt(reloaded.Civilization, "population"))
}

func TestDocumentsShareBackingMaps(t *testing.T) {
	g, err := Load(t.TempDir())
	require.NoError(t, err)

	docs := g.Documents()
	docs[RootCivilization]["population"] = 321
	assert.Equal(t, 321, IntAt(g.Civilization, "population"))
}

func TestWriteFileAtomicReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, WriteFileAtomic(path, []byte("first")))
	require.NoError(t, WriteFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestWriteYAMLAtomicMarshalFailureLeavesTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, WriteFileAtomic(path, []byte("intact")))

	// Channels cannot be serialized, so the marshal step fails before any
	// file is touched.
	err := WriteYAMLAtomic(path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "intact", string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".chronicle-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "doc.yaml")
	assert.Error(t, WriteFileAtomic(path, []byte("x")))
}
