// Package findings prepares raw scanner output for the rest of the
// pipeline.
package findings

import (
	"github.com/google/uuid"

	"github.com/remedyhq/remedy-agent/models"
)

// Enrich assigns a generated unique identifier to every finding that
// lacks one, preserving all other fields and the relative order. It is a
// pure function over its input slice.
func Enrich(raw []models.RawFinding) []models.RawFinding {
	enriched := make([]models.RawFinding, len(raw))
	for i, f := range raw {
		if f.FindingID == "" {
			f.FindingID = uuid.NewString()
		}
		enriched[i] = f
	}
	return enriched
}
