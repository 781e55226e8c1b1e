package models

import (
	"fmt"
	"sort"
)

// Names of the advanced metrics breakout scoring understands.
const (
	MetricAge          = "age"
	MetricXBA          = "xBA"
	MetricXSLG         = "xSLG"
	MetricXWOBA        = "xwOBA"
	MetricBarrelPct    = "barrel_pct"
	MetricHardHitPct   = "hard_hit_pct"
	MetricSpd          = "spd"
	MetricStuffPlus    = "stuff_plus"
	MetricKPct         = "k_pct"
	MetricBBPct        = "bb_pct"
	MetricCSWPct       = "csw_pct"
	MetricXERA         = "xERA"
	MetricLocationPlus = "location_plus"
	MetricSwStrPct     = "swstr_pct"
)

var knownMetrics = map[string]struct{}{
	MetricAge: {}, MetricXBA: {}, MetricXSLG: {}, MetricXWOBA: {},
	MetricBarrelPct: {}, MetricHardHitPct: {}, MetricSpd: {},
	MetricStuffPlus: {}, MetricKPct: {}, MetricBBPct: {}, MetricCSWPct: {},
	MetricXERA: {}, MetricLocationPlus: {}, MetricSwStrPct: {},
}

// IsKnownMetric reports whether name is part of the metric schema.
func IsKnownMetric(name string) bool {
	_, ok := knownMetrics[name]
	return ok
}

// ValidateMetrics rejects metric names outside the schema.
func ValidateMetrics(m map[string]float64) error {
	var unknown []string
	for name := range m {
		if !IsKnownMetric(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown metrics: %v", unknown)
	}
	return nil
}
