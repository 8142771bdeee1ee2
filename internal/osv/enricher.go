package osv

import (
	"context"
	"log/slog"
	"strings"

	"github.com/remedyhq/remedy-agent/models"
)

// maxLookups caps API traffic per scan.
const maxLookups = 25

// Enricher backfills advisory severity and summary data on SCA findings
// whose scanner output left them unspecified. Best-effort: an unreachable
// API leaves the findings untouched.
type Enricher struct {
	client *Client
}

func NewEnricher() *Enricher {
	return &Enricher{client: New()}
}

// Enrich returns the findings with advisory data filled in where missing.
func (e *Enricher) Enrich(ctx context.Context, raw []models.RawFinding) []models.RawFinding {
	lookups := 0
	for i := range raw {
		if !needsLookup(raw[i]) {
			continue
		}
		if lookups >= maxLookups {
			break
		}
		lookups++

		vuln, err := e.client.GetVuln(ctx, raw[i].RuleID)
		if err != nil {
			slog.Debug("advisory lookup failed", "id", raw[i].RuleID, "error", err)
			continue
		}
		if sev := vuln.EcosystemSeverity(); sev != "" {
			raw[i].Severity = models.NormalizeSeverity(sev)
		}
		if raw[i].Message == "" && vuln.Summary != "" {
			raw[i].Message = vuln.Summary
		}
	}
	if lookups > 0 {
		slog.Debug("advisory enrichment done", "lookups", lookups)
	}
	return raw
}

// needsLookup reports whether the finding carries an advisory id but no
// usable severity.
func needsLookup(f models.RawFinding) bool {
	if f.RuleID == "" {
		return false
	}
	switch models.NormalizeSeverity(f.Severity) {
	case string(models.SeverityUnknown), "UNSPECIFIED":
	default:
		return false
	}
	id := f.RuleID
	return strings.HasPrefix(id, "GHSA-") ||
		strings.HasPrefix(id, "CVE-") ||
		strings.HasPrefix(id, "OSV-") ||
		strings.Contains(id, "-20") // ecosystem ids like PYSEC-2023-xxx, GO-2024-xxxx
}
