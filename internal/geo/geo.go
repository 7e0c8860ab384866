package geo

import "math"

const earthRadiusKM = 6371.0

// DistanceM returns the great-circle distance in meters between two points.
func DistanceM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dphi := (lat2 - lat1) * math.Pi / 180
	dlambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dlambda/2)*math.Sin(dlambda/2)
	return earthRadiusKM * 1000 * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Valid reports whether both values are finite numbers.
func Valid(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) &&
		!math.IsNaN(lon) && !math.IsInf(lon, 0)
}
