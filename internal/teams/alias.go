// Package teams resolves the many historical and colloquial MLB team name
// variants down to canonical Stats API team IDs. The alias list is explicit
// and validated at load time: an unmapped name is an error, never a silent
// nil identifier.
package teams

import (
	"fmt"
	"strings"

	"mlb_excitement/ingestion/internal/models"
)

// aliases maps every known alternate spelling to the canonical club name as
// the Stats API reports it. Extend here when the scraper meets a new variant.
var aliases = map[string]string{
	"A's":          "Athletics",
	"Oakland A's":  "Athletics",
	"D-Backs":      "D-backs",
	"D-backs":      "D-backs",
	"Diamondbacks": "D-backs",
}

// AliasTable maps team name variants to canonical team IDs.
type AliasTable struct {
	byName map[string]int
}

// NewAliasTable builds the lookup table from the club list and validates that
// every alias targets a club that actually exists. A dangling alias fails the
// load so bad mappings surface at startup, not mid-ingest.
func NewAliasTable(clubs []models.TeamInput) (*AliasTable, error) {
	if len(clubs) == 0 {
		return nil, fmt.Errorf("no clubs supplied")
	}

	byName := make(map[string]int, len(clubs)+len(aliases))
	for _, club := range clubs {
		if club.TeamName == "" {
			return nil, fmt.Errorf("club %d has no name", club.TeamID)
		}
		byName[club.TeamName] = club.TeamID
	}

	for alias, canonical := range aliases {
		id, ok := byName[canonical]
		if !ok {
			return nil, fmt.Errorf("alias %q targets unknown club %q", alias, canonical)
		}
		byName[alias] = id
	}

	return &AliasTable{byName: byName}, nil
}

// Resolve returns the canonical team ID for name, trying an exact match
// first and a trimmed match second.
func (t *AliasTable) Resolve(name string) (int, error) {
	if id, ok := t.byName[name]; ok {
		return id, nil
	}
	if id, ok := t.byName[strings.TrimSpace(name)]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("unmapped team name %q", name)
}

// Known reports whether name resolves without error.
func (t *AliasTable) Known(name string) bool {
	_, err := t.Resolve(name)
	return err == nil
}

// Size returns the number of resolvable names, aliases included.
func (t *AliasTable) Size() int {
	return len(t.byName)
}
