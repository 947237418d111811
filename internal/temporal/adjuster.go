package temporal

import "time"

// Context is the temporal evidence attached to a result: the declaration
// date, how long ago that was relative to now, and the rule version in
// force on that date.
type Context struct {
	DeclarationDate time.Time
	YearsAgo        float64
	RuleVersion     string
}

// Adjuster applies the date-proximity bonus and rule-version resolution.
type Adjuster struct {
	resolver   *Resolver
	windowDays int
	maxBonus   float64
}

// NewAdjuster builds an Adjuster from windowDays and maxBonus as given; it
// applies no defaults itself (the configuration defaults are 365 and 0.1).
func NewAdjuster(resolver *Resolver, windowDays int, maxBonus float64) *Adjuster {
	return &Adjuster{resolver: resolver, windowDays: windowDays, maxBonus: maxBonus}
}

// AdjustScore returns score plus a proximity bonus when dateIssued is within
// windowDays of queryDate: maxBonus * (1 - days/windowDays). Outside the
// window, or with no dateIssued, the score passes through unchanged.
func (a *Adjuster) AdjustScore(score float64, dateIssued *time.Time, queryDate time.Time) float64 {
	if dateIssued == nil {
		return score
	}
	days := daysBetween(queryDate, *dateIssued)
	if days < float64(a.windowDays) {
		score += a.maxBonus * (1 - days/float64(a.windowDays))
	}
	return score
}

// BuildContext resolves the rule version and years-ago figure for
// dateIssued relative to now. Returns false if dateIssued is nil.
func (a *Adjuster) BuildContext(dateIssued *time.Time, now time.Time) (Context, bool) {
	if dateIssued == nil {
		return Context{}, false
	}
	version, _ := a.resolver.Resolve(*dateIssued)
	return Context{
		DeclarationDate: *dateIssued,
		YearsAgo:        daysBetween(now, *dateIssued) / 365.0,
		RuleVersion:     version.Version,
	}, true
}

func daysBetween(a, b time.Time) float64 {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d.Hours() / 24
}
