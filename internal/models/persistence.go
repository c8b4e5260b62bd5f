package models

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// One file per document. Saves are atomic per file but not transactional
// across files: a crash between two document saves can leave the on-disk
// set split across two logical versions.
const (
	fileCivilization      = "civilization.yaml"
	fileCulture           = "culture.yaml"
	fileReligion          = "religion.yaml"
	fileTechnology        = "technology.yaml"
	fileWorld             = "world.yaml"
	fileHistoryLong       = "history_long.yaml"
	fileHistoryCompressed = "history_compressed.yaml"
	fileMetadata          = "metadata.yaml"
)

// Load reads every document from dir, creating any missing file from its
// default payload.
func Load(dir string) (*GameState, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}

	g := &GameState{dir: dir}
	var err error
	if g.Civilization, err = loadDocument(filepath.Join(dir, fileCivilization), defaultCivilization()); err != nil {
		return nil, err
	}
	if g.Culture, err = loadDocument(filepath.Join(dir, fileCulture), defaultCulture()); err != nil {
		return nil, err
	}
	if g.Religion, err = loadDocument(filepath.Join(dir, fileReligion), defaultReligion()); err != nil {
		return nil, err
	}
	if g.Technology, err = loadDocument(filepath.Join(dir, fileTechnology), defaultTechnology()); err != nil {
		return nil, err
	}
	if g.World, err = loadDocument(filepath.Join(dir, fileWorld), defaultWorld()); err != nil {
		return nil, err
	}
	if g.HistoryLong, err = loadDocument(filepath.Join(dir, fileHistoryLong), defaultHistoryLong()); err != nil {
		return nil, err
	}
	if g.HistoryCompressed, err = loadDocument(filepath.Join(dir, fileHistoryCompressed), defaultHistoryCompressed()); err != nil {
		return nil, err
	}
	if g.Meta, err = loadMetadata(filepath.Join(dir, fileMetadata)); err != nil {
		return nil, err
	}
	return g, nil
}

// Save writes every document back to disk. Each file is written
// independently; a failure on one document does not stop the others, and
// the accumulated errors are returned joined.
func (g *GameState) Save() error {
	var errs []error
	save := func(name string, data any) {
		if err := WriteYAMLAtomic(filepath.Join(g.dir, name), data); err != nil {
			slog.Error("save document failed", "file", name, "err", err)
			errs = append(errs, err)
		}
	}
	save(fileCivilization, g.Civilization)
	save(fileCulture, g.Culture)
	save(fileReligion, g.Religion)
	save(fileTechnology, g.Technology)
	save(fileWorld, g.World)
	save(fileHistoryLong, g.HistoryLong)
	save(fileHistoryCompressed, g.HistoryCompressed)
	save(fileMetadata, g.Meta)
	return errors.Join(errs...)
}

// ResetToDefaults overwrites every document from the defaults snapshot and
// persists the result. The game gets a fresh id and turn counter.
func (g *GameState) ResetToDefaults() error {
	g.Civilization = defaultCivilization()
	g.Culture = defaultCulture()
	g.Religion = defaultReligion()
	g.Technology = defaultTechnology()
	g.World = defaultWorld()
	g.HistoryLong = defaultHistoryLong()
	g.HistoryCompressed = defaultHistoryCompressed()
	g.Meta = defaultMetadata()
	return g.Save()
}

func loadDocument(path string, def Document) (Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if werr := WriteYAMLAtomic(path, def); werr != nil {
			return nil, werr
		}
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

func loadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		meta := defaultMetadata()
		if werr := WriteYAMLAtomic(path, meta); werr != nil {
			return Metadata{}, werr
		}
		return meta, nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("read %s: %w", path, err)
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return meta, nil
}

// WriteYAMLAtomic serializes data and writes it via WriteFileAtomic.
func WriteYAMLAtomic(path string, data any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return WriteFileAtomic(path, out)
}

// WriteFileAtomic writes data to a temporary file in the target's directory
// and renames it over the target. On any failure the temp file is removed
// and the target is left untouched, so a reader can never observe a
// partially written file.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".chronicle-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
