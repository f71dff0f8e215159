// internal/catalog/entity.go
//
// Entity model and dataset decoding.
//
// The upstream dataset carries company ids as JSON numbers for most rows and as
// strings for a few. The id is normalized to a string once, here, so every
// lookup site uses a single key type.

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Entity is one company in the catalog.
type Entity struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	OneLiner   string   `json:"oneLiner,omitempty"`
	LogoURL    string   `json:"smallLogoUrl,omitempty"`
	BatchCode  string   `json:"batch"`
	Industry   string   `json:"primaryIndustry"`
	Industries []string `json:"industries"`
	Status     string   `json:"status"`
	Badges     []string `json:"badges"`
	Regions    []string `json:"regions"`
}

// Dataset is the on-disk file shape: {version, count, companies}.
type Dataset struct {
	Version   string   `json:"version"`
	Count     int      `json:"count"`
	Companies []Entity `json:"companies"`
}

// UnmarshalJSON accepts the id as either a JSON number or a JSON string.
func (e *Entity) UnmarshalJSON(b []byte) error {
	type plain Entity
	var raw struct {
		ID json.RawMessage `json:"id"`
		plain
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := canonicalID(raw.ID)
	if err != nil {
		return err
	}
	*e = Entity(raw.plain)
	e.ID = id
	return nil
}

// canonicalID renders a raw JSON id as its canonical string form.
func canonicalID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("id: %w", err)
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id: expected number or string, got %s", raw)
	}
	return n.String(), nil
}

// sanitizeText replaces control whitespace with spaces, collapses runs of
// spaces and trims.
func sanitizeText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeList drops empty elements and sanitizes the rest.
func sanitizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = sanitizeText(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// sanitize returns a cleaned copy of e. The primary industry falls back to the
// first tag of the full industry set.
func (e Entity) sanitize() Entity {
	e.Slug = strings.TrimSpace(e.Slug)
	e.Name = sanitizeText(e.Name)
	e.OneLiner = sanitizeText(e.OneLiner)
	e.BatchCode = strings.TrimSpace(e.BatchCode)
	e.Status = sanitizeText(e.Status)
	e.Industries = sanitizeList(e.Industries)
	e.Industry = sanitizeText(e.Industry)
	if e.Industry == "" && len(e.Industries) > 0 {
		e.Industry = e.Industries[0]
	}
	e.Badges = sanitizeList(e.Badges)
	e.Regions = sanitizeList(e.Regions)
	return e
}

// validSlug rejects empty slugs and the literal placeholders the scraper
// emits for missing values.
func validSlug(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return false
	}
	return true
}

// HasBadge reports whether e carries badge, comparing letters and digits only
// so "top_company", "topCompany" and "TopCompany" are the same badge.
func (e Entity) HasBadge(badge string) bool {
	want := badgeKey(badge)
	for _, b := range e.Badges {
		if badgeKey(b) == want {
			return true
		}
	}
	return false
}

func badgeKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
