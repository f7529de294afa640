package entities

import "testing"

func TestConfidenceCeilingTakesWeakestNode(t *testing.T) {
	ceiling, weakest := ConfidenceCeiling([]NodeCredibility{
		{NodeID: "node-a", Credibility: 0.9},
		{NodeID: "node-b", Credibility: 0.6},
		{NodeID: "node-c", Credibility: 0.75},
	})
	if ceiling != 0.6 {
		t.Fatalf("ceiling = %f, want 0.6", ceiling)
	}
	if weakest != "node-b" {
		t.Fatalf("weakest = %s, want node-b", weakest)
	}
}

func TestConfidenceCeilingNoReferences(t *testing.T) {
	ceiling, weakest := ConfidenceCeiling(nil)
	if ceiling != 1.0 {
		t.Fatalf("ceiling = %f, want 1.0 without references", ceiling)
	}
	if weakest != "" {
		t.Fatalf("weakest = %q, want empty", weakest)
	}
}

func TestConfidenceCeilingSingleReference(t *testing.T) {
	ceiling, weakest := ConfidenceCeiling([]NodeCredibility{
		{NodeID: "node-a", Credibility: 0.42},
	})
	if ceiling != 0.42 || weakest != "node-a" {
		t.Fatalf("got (%f, %s), want (0.42, node-a)", ceiling, weakest)
	}
}

func TestValidStance(t *testing.T) {
	for _, stance := range []InquiryStance{StanceAgree, StanceDisagree, StanceNeutral} {
		if !ValidStance(stance) {
			t.Fatalf("stance %q should be valid", stance)
		}
	}
	if ValidStance("strongly-agree") {
		t.Fatalf("unknown stance should be invalid")
	}
}
