package geo

import (
	"math"

	"github.com/passbi/transport_catalogue/internal/models"
)

const earthRadius = 6371000 // meters

// Distance calculates the great-circle distance between two points in meters
func Distance(from, to models.Coordinates) float64 {
	if from == to {
		return 0
	}

	const dr = math.Pi / 180
	cos := math.Sin(from.Lat*dr)*math.Sin(to.Lat*dr) +
		math.Cos(from.Lat*dr)*math.Cos(to.Lat*dr)*math.Cos(math.Abs(from.Lon-to.Lon)*dr)

	// rounding can push the cosine just outside [-1, 1]
	return math.Acos(math.Max(-1, math.Min(1, cos))) * earthRadius
}
