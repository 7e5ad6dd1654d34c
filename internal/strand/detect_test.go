package strand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nanoprep/internal/island"
)

const high = 200.0

func means(n int, runs ...[2]int) []float64 {
	m := make([]float64, n)
	for i := range m {
		m[i] = 50
	}
	for _, r := range runs {
		for i := r[0]; i < r[1]; i++ {
			m[i] = high
		}
	}
	return m
}

func detector() Detector {
	return Detector{
		Finder: island.ExactRun(5),
		Trim:   Trim{Start: 50, End: 50, BeforeHairpin: 50, AfterHairpin: 50},
	}
}

func TestDetectHairpinSplitsRead(t *testing.T) {
	d := detector().Detect(means(1000, [2]int{480, 495}), high)
	require.True(t, d.HasHairpin)
	assert.Equal(t, island.Island{Start: 480, End: 495}, d.Hairpin)
	assert.Equal(t, Bounds{50, 430, 545, 950}, d.Bounds)
}

func TestDetectMiddleThird(t *testing.T) {
	tests := []struct {
		name    string
		run     [2]int
		hairpin bool
		want    Bounds
	}{
		{"centered island accepted", [2]int{495, 505}, true, Bounds{50, 445, 555, 950}},
		{"leading island rejected", [2]int{0, 10}, false, Bounds{50, 950, 0, 0}},
		{"just inside", [2]int{660, 670}, true, Bounds{50, 610, 720, 950}},
		{"just outside", [2]int{667, 680}, false, Bounds{50, 950, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := detector().Detect(means(1000, tt.run), high)
			assert.Equal(t, tt.hairpin, d.HasHairpin)
			assert.Equal(t, tt.want, d.Bounds)
		})
	}
}

func TestDetectLeadingClamp(t *testing.T) {
	d := detector().Detect(means(1000, [2]int{0, 8}, [2]int{495, 505}), high)
	require.True(t, d.HasHairpin)
	assert.Equal(t, 8, d.Bounds[0])
	assert.Equal(t, Bounds{8, 445, 555, 950}, d.Bounds)
}

func TestDetectTailClamp(t *testing.T) {
	d := detector().Detect(means(1000, [2]int{495, 505}, [2]int{920, 930}), high)
	require.True(t, d.HasHairpin)
	assert.Equal(t, Bounds{50, 445, 555, 920}, d.Bounds)
}

func TestDetectMergesNearbyIslands(t *testing.T) {
	d := detector().Detect(means(1000, [2]int{470, 480}, [2]int{520, 530}), high)
	require.Len(t, d.Islands, 1)
	assert.Equal(t, island.Island{Start: 470, End: 530}, d.Hairpin)
	assert.Equal(t, Bounds{50, 420, 580, 950}, d.Bounds)
}

func TestDetectNoIslands(t *testing.T) {
	d := detector().Detect(means(1000), high)
	assert.False(t, d.HasHairpin)
	assert.Empty(t, d.Islands)
	assert.Equal(t, Bounds{50, 950, 0, 0}, d.Bounds)
}
