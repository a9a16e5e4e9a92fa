package search

import (
	"math"

	"linguahub/models"
)

const (
	earthRadiusKm = 6371.0

	// PreBookedRadiusKm and OnDemandRadiusKm bound the face-to-face distance
	// between the meeting point and the interpreter. Boundaries are inclusive.
	PreBookedRadiusKm = 150.0
	OnDemandRadiusKm  = 20.0

	// geoToleranceKm absorbs floating point noise at the radius boundary.
	geoToleranceKm = 1e-6
)

// RadiusFor returns the face-to-face search radius for a scheduling mode.
func RadiusFor(mode models.SchedulingType) float64 {
	if mode == models.SchedulingOnDemand {
		return OnDemandRadiusKm
	}
	return PreBookedRadiusKm
}

// haversine calculates the great-circle distance (in km) between two lat/lon points.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
