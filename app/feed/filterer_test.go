package feed

import (
	"testing"
)

func TestFilterer_Run_TargetZoneOnly(t *testing.T) {
	filterer := NewFilterer()

	candidates := []Candidate{
		{Title: "Aviso amarillo. Litoral norte de Valencia. Viento."},
		{Title: "Aviso amarillo. Litoral sur de Valencia. Viento."},
		{Title: "Aviso amarillo. Interior de Valencia. Lluvias."},
	}

	result := filterer.Run(candidates, ZoneFilter{TargetZone: "Litoral norte de Valencia"})

	if len(result) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(result))
	}
	if result[0].Title != candidates[0].Title {
		t.Errorf("Expected first candidate to be kept, got: %s", result[0].Title)
	}
}

func TestFilterer_Run_ExcludedMarker(t *testing.T) {
	filterer := NewFilterer()

	candidates := []Candidate{
		{Title: "Aviso amarillo. Litoral norte de Valencia. Costeros."},
		{Title: "Aviso amarillo. Litoral norte de Valencia. Viento."},
	}

	result := filterer.Run(candidates, ZoneFilter{
		TargetZone:     "litoral NORTE de valencia",
		ExcludedMarker: "costeros",
	})

	if len(result) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(result))
	}
	if result[0].Title != "Aviso amarillo. Litoral norte de Valencia. Viento." {
		t.Errorf("Expected inland bulletin to be kept, got: %s", result[0].Title)
	}
}

func TestFilterer_Run_EmptyMarkerExcludesNothing(t *testing.T) {
	filterer := NewFilterer()

	candidates := []Candidate{
		{Title: "Aviso amarillo. Litoral norte de Valencia. Costeros."},
		{Title: "Aviso amarillo. Litoral norte de Valencia. Viento."},
	}

	result := filterer.Run(candidates, ZoneFilter{TargetZone: "Litoral norte de Valencia"})

	if len(result) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(result))
	}
}

func TestFilterer_Run_AccentedTitles(t *testing.T) {
	filterer := NewFilterer()

	candidates := []Candidate{
		{Title: "AVISO AMARILLO. LITORAL DE CÁDIZ. FENÓMENOS COSTEROS."},
		{Title: "AVISO AMARILLO. LITORAL DE CÁDIZ. TEMPERATURAS MÁXIMAS."},
	}

	result := filterer.Run(candidates, ZoneFilter{TargetZone: "Litoral de Cádiz", ExcludedMarker: "Costeros"})

	if len(result) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(result))
	}
	if result[0].Title != candidates[1].Title {
		t.Errorf("Unexpected candidate kept: %s", result[0].Title)
	}
}
