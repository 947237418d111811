// Package temporal implements date-aware score adjustment and EAEU rule
// version resolution, grounded on
// dt_xml/temporal/{rule_versioning,temporal_awareness}.py.
package temporal

import "time"

// RuleVersion is a named EAEU customs rule set, effective from a given date
// until superseded by the next version.
type RuleVersion struct {
	Version       string
	EffectiveFrom time.Time
	Description   string
}

// DefaultRuleVersions returns the three built-in EAEU rule versions the
// original carries inline (in a real deployment these would be loaded from
// config or a database).
func DefaultRuleVersions() []RuleVersion {
	return []RuleVersion{
		{Version: "2020-01-01", EffectiveFrom: date(2020, 1, 1), Description: "Base EAEU 2020 rule set"},
		{Version: "2021-07-01", EffectiveFrom: date(2021, 7, 1), Description: "EAEU 2021 rule update"},
		{Version: "2023-01-01", EffectiveFrom: date(2023, 1, 1), Description: "EAEU 2023 rule update"},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Resolver resolves a declaration date to the rule version in force on that
// date.
type Resolver struct {
	versions []RuleVersion
}

// NewResolver builds a Resolver over versions, which need not be sorted.
func NewResolver(versions []RuleVersion) *Resolver {
	return &Resolver{versions: versions}
}

// Resolve returns the rule version with the highest EffectiveFrom that is
// still <= at. If at predates every version, the earliest version is
// returned instead. Returns false if no versions are configured.
func (r *Resolver) Resolve(at time.Time) (RuleVersion, bool) {
	if len(r.versions) == 0 {
		return RuleVersion{}, false
	}

	var best *RuleVersion
	earliest := r.versions[0]
	for i := range r.versions {
		v := r.versions[i]
		if v.EffectiveFrom.Before(earliest.EffectiveFrom) {
			earliest = v
		}
		if !v.EffectiveFrom.After(at) {
			if best == nil || v.EffectiveFrom.After(best.EffectiveFrom) {
				best = &r.versions[i]
			}
		}
	}
	if best != nil {
		return *best, true
	}
	return earliest, true
}
