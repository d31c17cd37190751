package config

import (
	"fmt"
)

// maxCandidateCities bounds the rollout optimizer's exhaustive bundle
// enumeration. Cost grows combinatorially with candidate count and the
// per-year launch cap, so candidate counts must stay in the tens.
const maxCandidateCities = 24

// maxNewPerYearBound caps the per-year launch count for the same reason.
const maxNewPerYearBound = 6

// Validate checks the snapshot for structural errors. Degenerate numeric
// values (zero discounts, zero probability sums) are handled by local
// fallbacks in the computation layers and are NOT rejected here; this guards
// against malformed profiles that would otherwise produce silently wrong
// scores.
func (s Snapshot) Validate() error {
	if len(s.Scenarios) == 0 {
		return fmt.Errorf("no macro scenarios configured")
	}
	if len(s.Strategies) == 0 {
		return fmt.Errorf("no strategy options configured")
	}
	if s.Simulation.NHouseholds <= 0 {
		return fmt.Errorf("household sample size must be positive, got %d", s.Simulation.NHouseholds)
	}
	if s.Simulation.NReplications <= 0 {
		return fmt.Errorf("replication count must be positive, got %d", s.Simulation.NReplications)
	}

	seenCities := make(map[string]bool, len(s.Cities))
	for i, city := range s.Cities {
		if city.City == "" {
			return fmt.Errorf("city profile %d is missing a city name", i)
		}
		if city.State == "" {
			return fmt.Errorf("city profile %q is missing a state", city.City)
		}
		if city.HouseholdsK <= 0 {
			return fmt.Errorf("city profile %q has non-positive household count %.1f", city.City, city.HouseholdsK)
		}
		if seenCities[city.City] {
			return fmt.Errorf("duplicate city profile %q", city.City)
		}
		seenCities[city.City] = true
	}
	if len(s.Cities) > maxCandidateCities {
		return fmt.Errorf("too many city profiles for exhaustive bundle enumeration: %d > %d", len(s.Cities), maxCandidateCities)
	}
	for i, maxNew := range s.Optimization.MaxNewCitiesPerYear {
		if maxNew < 0 || maxNew > maxNewPerYearBound {
			return fmt.Errorf("max_new_cities_per_year[%d] out of range: %d", i, maxNew)
		}
	}
	if len(s.Financial.WarehousesCumulative) == 0 {
		return fmt.Errorf("warehouse rollout schedule is empty")
	}
	prev := 0
	for i, count := range s.Financial.WarehousesCumulative {
		if count < prev {
			return fmt.Errorf("warehouse rollout schedule must be non-decreasing at year %d", i+1)
		}
		prev = count
	}
	return nil
}
