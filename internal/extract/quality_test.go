package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateProfile() ClassProfile {
	return ClassProfile{
		Class:          "test",
		Kind:           KindPolygon,
		MinAreaM2:      40,
		MaxAreaM2:      500,
		MaxAspectRatio: 8,
	}
}

func rectRing(x, y, w, h float64) Ring {
	return Ring{
		{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y},
	}
}

func TestQualityGate_AcceptsCompactRectangle(t *testing.T) {
	gate := NewQualityGate(gateProfile())
	report := gate.CheckPolygon(1, rectRing(0, 0, 20, 10))
	require.True(t, report.Accepted, "20x10 rectangle should pass: %+v", report)
	assert.Empty(t, report.Reason)
}

func TestQualityGate_RejectsElongatedStrip(t *testing.T) {
	// 2x40 strip: area 80 is inside bounds but the 20:1 aspect is not.
	gate := NewQualityGate(gateProfile())
	report := gate.CheckPolygon(1, rectRing(0, 0, 40, 2))
	require.False(t, report.Accepted)
	assert.Equal(t, ReasonTooElongated, report.Reason)
	assert.InDelta(t, 20.0, report.Value, 0.01)
}

func TestQualityGate_AreaBounds(t *testing.T) {
	gate := NewQualityGate(gateProfile())

	report := gate.CheckPolygon(1, rectRing(0, 0, 5, 5))
	require.False(t, report.Accepted)
	assert.Equal(t, ReasonTooSmall, report.Reason)

	report = gate.CheckPolygon(2, rectRing(0, 0, 30, 30))
	require.False(t, report.Accepted)
	assert.Equal(t, ReasonTooLarge, report.Reason)
}

func TestQualityGate_FirstAcceptedWinsOverlap(t *testing.T) {
	gate := NewQualityGate(gateProfile())

	first := gate.CheckPolygon(1, rectRing(0, 0, 20, 10))
	require.True(t, first.Accepted)

	// Cluster 2 overlaps cluster 1 and loses regardless of its size.
	second := gate.CheckPolygon(2, rectRing(10, 5, 20, 10))
	require.False(t, second.Accepted)
	assert.Equal(t, ReasonOverlap, second.Reason)

	// Cluster 3 is disjoint and unaffected by cluster 2's rejection.
	third := gate.CheckPolygon(3, rectRing(40, 0, 20, 10))
	assert.True(t, third.Accepted)
}

func TestQualityGate_SharedEdgeIsNotOverlap(t *testing.T) {
	gate := NewQualityGate(gateProfile())

	require.True(t, gate.CheckPolygon(1, rectRing(0, 0, 10, 10)).Accepted)
	report := gate.CheckPolygon(2, rectRing(10, 0, 10, 10))
	assert.True(t, report.Accepted, "adjacent footprints sharing an edge must both pass: %+v", report)
}

func TestQualityGate_ContainmentIsOverlap(t *testing.T) {
	gate := NewQualityGate(gateProfile())

	require.True(t, gate.CheckPolygon(1, rectRing(0, 0, 20, 20)).Accepted)
	// Fully inside the first: no edges cross, vertices are contained.
	report := gate.CheckPolygon(2, rectRing(5, 5, 8, 8))
	require.False(t, report.Accepted)
	assert.Equal(t, ReasonOverlap, report.Reason)
}

func TestQualityGate_CheckLine(t *testing.T) {
	profile := ClassProfile{
		Class:          "test",
		Kind:           KindLine,
		MinLengthM:     5,
		MinAspectRatio: 3,
		MinPoints:      20,
	}
	gate := NewQualityGate(profile)

	tests := []struct {
		name       string
		line       LineGeometry
		accepted   bool
		wantReason string
	}{
		{
			name:     "valid span",
			line:     LineGeometry{ClusterID: 1, LengthM: 30, AspectRatio: 60, PointCount: 45},
			accepted: true,
		},
		{
			name:       "too short",
			line:       LineGeometry{ClusterID: 2, LengthM: 3, AspectRatio: 60, PointCount: 45},
			wantReason: ReasonTooShort,
		},
		{
			name:       "not linear",
			line:       LineGeometry{ClusterID: 3, LengthM: 30, AspectRatio: 2, PointCount: 45},
			wantReason: ReasonNotLinear,
		},
		{
			name:       "too few points",
			line:       LineGeometry{ClusterID: 4, LengthM: 30, AspectRatio: 60, PointCount: 10},
			wantReason: ReasonTooFewPoints,
		},
		{
			name:       "length checked before aspect",
			line:       LineGeometry{ClusterID: 5, LengthM: 3, AspectRatio: 2, PointCount: 10},
			wantReason: ReasonTooShort,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := gate.CheckLine(&tt.line)
			assert.Equal(t, tt.accepted, report.Accepted)
			assert.Equal(t, tt.wantReason, report.Reason)
		})
	}
}

func TestRingsOverlap_DisjointBoxes(t *testing.T) {
	if ringsOverlap(rectRing(0, 0, 5, 5), rectRing(20, 20, 5, 5)) {
		t.Error("disjoint boxes reported overlapping")
	}
}

func TestRingsOverlap_Identical(t *testing.T) {
	r := rectRing(0, 0, 5, 5)
	if !ringsOverlap(r, r) {
		t.Error("identical rings reported disjoint")
	}
}
