package shipping

import "testing"

func TestInferProvinceSuppliedWins(t *testing.T) {
	if got := InferProvince("IT", "00100", "TO"); got != "TO" {
		t.Fatalf("expected supplied province to win, got %s", got)
	}
}

func TestInferProvinceFromItalianCAP(t *testing.T) {
	if got := InferProvince("IT", "00100", ""); got != "RM" {
		t.Fatalf("expected RM for CAP 00100, got %s", got)
	}
	if got := InferProvince("IT", "20121", ""); got != "MI" {
		t.Fatalf("expected MI for CAP 20121, got %s", got)
	}
}

func TestInferProvinceFallback(t *testing.T) {
	if got := InferProvince("IT", "49999", ""); got != ProvinceFallback {
		t.Fatalf("expected fallback for unmapped CAP prefix, got %s", got)
	}
	if got := InferProvince("FR", "75001", ""); got != ProvinceFallback {
		t.Fatalf("expected fallback for non-IT destination, got %s", got)
	}
	if got := InferProvince("IT", "0", ""); got != ProvinceFallback {
		t.Fatalf("expected fallback for short CAP, got %s", got)
	}
}
