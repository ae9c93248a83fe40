package bison

import "math"

const (
	rdReferenceX         = 155000.0
	rdReferenceY         = 463000.0
	rdReferenceLatitude  = 52.15517440
	rdReferenceLongitude = 5.38720621
)

type rdTerm struct {
	p, q  int
	value float64
}

var rdLatitudeTerms = []rdTerm{
	{0, 1, 3235.65389},
	{2, 0, -32.58297},
	{0, 2, -0.24750},
	{2, 1, -0.84978},
	{0, 3, -0.06550},
	{2, 2, -0.01709},
	{1, 0, -0.00738},
	{4, 0, 0.00530},
	{2, 3, -0.00039},
	{4, 1, 0.00033},
	{1, 1, -0.00012},
}

var rdLongitudeTerms = []rdTerm{
	{1, 0, 5260.52916},
	{1, 1, 105.94684},
	{1, 2, 2.45656},
	{3, 0, -0.81885},
	{1, 3, 0.05594},
	{3, 1, -0.05607},
	{0, 1, 0.01199},
	{3, 2, -0.00256},
	{1, 4, 0.00128},
	{0, 2, 0.00022},
	{2, 0, -0.00022},
	{5, 0, 0.00026},
}

// RDToWGS84 converts a Rijksdriehoek coordinate to WGS84 latitude and longitude.
// Accurate to about a metre inside the Netherlands.
func RDToWGS84(x float64, y float64) (float64, float64) {
	dX := (x - rdReferenceX) * 1e-5
	dY := (y - rdReferenceY) * 1e-5

	var latitude, longitude float64
	for _, term := range rdLatitudeTerms {
		latitude += term.value * math.Pow(dX, float64(term.p)) * math.Pow(dY, float64(term.q))
	}
	for _, term := range rdLongitudeTerms {
		longitude += term.value * math.Pow(dX, float64(term.p)) * math.Pow(dY, float64(term.q))
	}

	return rdReferenceLatitude + latitude/3600, rdReferenceLongitude + longitude/3600
}
