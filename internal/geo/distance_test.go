package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm, tolKm          float64
	}{
		{"same point", 37.9838, 23.7275, 37.9838, 23.7275, 0, 0.001},
		{"athens to piraeus", 37.9838, 23.7275, 37.9420, 23.6465, 8.5, 1.0},
		{"athens to thessaloniki", 37.9838, 23.7275, 40.6401, 22.9444, 300, 10},
		{"across the date line", 0, 179.9, 0, -179.9, 22.3, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolKm {
				t.Fatalf("DistanceKm = %.3f, want %.1f±%.1f", got, tt.wantKm, tt.tolKm)
			}
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := DistanceKm(37.98, 23.72, 40.64, 22.94)
	b := DistanceKm(40.64, 22.94, 37.98, 23.72)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("asymmetric distance: %v vs %v", a, b)
	}
}

func TestValidCoords(t *testing.T) {
	valid := [][2]float64{
		{0, 0}, {90, 180}, {-90, -180}, {37.98, 23.72},
	}
	for _, c := range valid {
		if !ValidCoords(c[0], c[1]) {
			t.Errorf("ValidCoords(%v, %v) = false, want true", c[0], c[1])
		}
	}

	invalid := [][2]float64{
		{90.0001, 0}, {-91, 0}, {0, 180.5}, {0, -181},
		{math.NaN(), 0}, {0, math.NaN()},
	}
	for _, c := range invalid {
		if ValidCoords(c[0], c[1]) {
			t.Errorf("ValidCoords(%v, %v) = true, want false", c[0], c[1])
		}
	}
}
