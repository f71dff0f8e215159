// internal/catalog/load.go
//
// Loading the company dataset.
//
// Initialization behavior (Load):
//   1. If path is set, read the dataset from that file.
//   2. Otherwise fall back to the sample dataset embedded in assets.
//
// Rows with a missing or placeholder slug ("none", "null") are skipped since
// nobody can guess them. A dataset without a version tag is versioned by the
// hash of its bytes so stored games still detect a changed file.

package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ycdle/assets"
	"github.com/robalobadob/ycdle/internal/apperr"
)

// Load reads and indexes the dataset at path, or the embedded default when
// path is empty.
func Load(path string) (*Catalog, error) {
	var (
		b   []byte
		err error
	)
	if path != "" {
		b, err = os.ReadFile(path)
	} else {
		b, err = assets.DefaultCatalog()
	}
	if err != nil {
		return nil, apperr.Wrap("catalog.load", apperr.KindConfiguration, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, err
	}
	src := path
	if src == "" {
		src = "embedded"
	}
	log.Info().Str("source", src).Str("version", c.Version()).Int("companies", c.Len()).Msg("catalog loaded")
	return c, nil
}

// Parse decodes a dataset document and builds the catalog.
func Parse(b []byte) (*Catalog, error) {
	var ds Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, apperr.Wrap("catalog.parse", apperr.KindInvalidInput, err)
	}
	if ds.Companies == nil {
		return nil, apperr.New("catalog.parse", apperr.KindInvalidInput, `missing "companies" field`)
	}

	entities := make([]Entity, 0, len(ds.Companies))
	noSlug, noID := 0, 0
	for _, e := range ds.Companies {
		e = e.sanitize()
		switch {
		case !validSlug(e.Slug):
			noSlug++
		case e.ID == "":
			// Selection resolves targets by id; a row without one could
			// never be the day's answer.
			noID++
		default:
			entities = append(entities, e)
		}
	}
	if noSlug > 0 {
		log.Warn().Int("skipped", noSlug).Msg("catalog rows without a usable slug")
	}
	if noID > 0 {
		log.Warn().Int("skipped", noID).Msg("catalog rows without an id")
	}
	if ds.Count != 0 && ds.Count != len(ds.Companies) {
		log.Warn().Int("declared", ds.Count).Int("actual", len(ds.Companies)).Msg("catalog count mismatch")
	}

	version := ds.Version
	if version == "" {
		sum := sha256.Sum256(b)
		version = "sha256-" + hex.EncodeToString(sum[:6])
	}
	c, err := New(version, entities)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", version, err)
	}
	return c, nil
}
