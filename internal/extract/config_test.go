package extract

import (
	"strings"
	"testing"
)

func TestDefaultProfiles_AllValid(t *testing.T) {
	profiles := DefaultProfiles()
	for class, p := range profiles {
		if err := p.Validate(); err != nil {
			t.Errorf("profile %s: %v", class, err)
		}
	}
	for _, class := range []string{"6_Buildings", "7_Trees", "8_OtherVegetation", "11_Wires", "12_Masts"} {
		if _, ok := profiles[class]; !ok {
			t.Errorf("missing profile for %s", class)
		}
	}
}

func TestDefaultProfiles_WiresAreLine3D(t *testing.T) {
	p := DefaultProfiles()["11_Wires"]
	if p.Kind != KindLine {
		t.Errorf("wires kind = %q, want %q", p.Kind, KindLine)
	}
	if p.ClusterMode != Cluster3D {
		t.Errorf("wires cluster mode = %q, want %q", p.ClusterMode, Cluster3D)
	}
}

func TestClassProfile_Validate_Errors(t *testing.T) {
	base := DefaultProfiles()["6_Buildings"]

	tests := []struct {
		name    string
		mutate  func(*ClassProfile)
		wantSub string
	}{
		{"empty class", func(p *ClassProfile) { p.Class = "" }, "class name"},
		{"bad kind", func(p *ClassProfile) { p.Kind = "blob" }, "geometry kind"},
		{"zero voxel", func(p *ClassProfile) { p.VoxelSizeM = 0 }, "voxel_size_m"},
		{"percentile 100", func(p *ClassProfile) { p.HeightPercentile = 100 }, "height_percentile"},
		{"zero eps", func(p *ClassProfile) { p.ClusterEpsM = 0 }, "cluster_eps_m"},
		{"inverted area bounds", func(p *ClassProfile) { p.MinAreaM2 = 100; p.MaxAreaM2 = 50 }, "area bounds"},
		{"negative tolerance", func(p *ClassProfile) { p.SimplifyToleranceM = -1 }, "simplify_tolerance_m"},
	}
	for _, tt := range tests {
		p := base
		tt.mutate(&p)
		err := p.Validate()
		if err == nil {
			t.Errorf("%s: expected error, got nil", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantSub) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.wantSub)
		}
	}
}

func TestClassProfile_Validate_LineThresholds(t *testing.T) {
	p := DefaultProfiles()["11_Wires"]
	p.MinPoints = 1
	if err := p.Validate(); err == nil {
		t.Error("expected error for min_points below 2")
	}

	p = DefaultProfiles()["11_Wires"]
	p.MinLengthM = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for zero min_length_m")
	}
}
