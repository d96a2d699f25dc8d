package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDefaultBands(t *testing.T) {
	c, err := NewClassifier(DefaultBands())
	require.NoError(t, err)

	tests := []struct {
		name    string
		px      RGB
		want    CongestionCategory
		matched bool
	}{
		{name: "dark red core", px: RGB{170, 30, 30}, want: CategorySevere, matched: true},
		{name: "dark red min edge", px: RGB{140, 0, 0}, want: CategorySevere, matched: true},
		{name: "dark red max edge", px: RGB{200, 70, 70}, want: CategorySevere, matched: true},
		{name: "red core", px: RGB{240, 80, 60}, want: CategoryHeavy, matched: true},
		{name: "yellow core", px: RGB{250, 200, 70}, want: CategoryModerate, matched: true},
		{name: "green core", px: RGB{30, 220, 160}, want: CategoryFreeFlow, matched: true},
		{name: "road gray", px: RGB{180, 190, 200}, want: CategoryUnknown},
		{name: "black", px: RGB{0, 0, 0}, want: CategoryUnknown},
		{name: "white", px: RGB{255, 255, 255}, want: CategoryUnknown},
		{name: "between dark red and red", px: RGB{210, 60, 50}, want: CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(tt.px)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c, err := NewClassifier(DefaultBands())
	require.NoError(t, err)

	px := RGB{245, 90, 70}
	first, ok := c.Classify(px)
	require.True(t, ok)
	for i := 0; i < 100; i++ {
		got, ok := c.Classify(px)
		require.True(t, ok)
		require.Equal(t, first, got)
	}
}

func TestNewClassifierRejectsBadTables(t *testing.T) {
	_, err := NewClassifier(nil)
	assert.Error(t, err)

	_, err = NewClassifier([]ColorBand{
		{Min: RGB{0, 0, 0}, Max: RGB{10, 10, 10}, Category: CategoryHeavy},
	})
	assert.ErrorContains(t, err, "no name")

	_, err = NewClassifier([]ColorBand{
		{Name: "gray", Min: RGB{100, 100, 100}, Max: RGB{120, 120, 120}, Category: CategoryUnknown},
	})
	assert.ErrorContains(t, err, "unknown category")

	_, err = NewClassifier([]ColorBand{
		{Name: "inverted", Min: RGB{50, 0, 0}, Max: RGB{10, 10, 10}, Category: CategoryHeavy},
	})
	assert.ErrorContains(t, err, "inverted bounds")

	_, err = NewClassifier([]ColorBand{
		{Name: "a", Min: RGB{0, 0, 0}, Max: RGB{100, 100, 100}, Category: CategoryHeavy},
		{Name: "b", Min: RGB{90, 90, 90}, Max: RGB{200, 200, 200}, Category: CategorySevere},
	})
	assert.ErrorContains(t, err, "overlap")
}

func TestNewClassifierCopiesInput(t *testing.T) {
	bands := DefaultBands()
	c, err := NewClassifier(bands)
	require.NoError(t, err)

	// mutating the caller's slice must not affect the classifier
	bands[0].Category = CategoryFreeFlow
	got, ok := c.Classify(RGB{170, 30, 30})
	require.True(t, ok)
	assert.Equal(t, CategorySevere, got)
}

func TestCategoryScores(t *testing.T) {
	assert.Equal(t, float64(30), CategoryFreeFlow.Score())
	assert.Equal(t, float64(70), CategoryModerate.Score())
	assert.Equal(t, float64(100), CategoryHeavy.Score())
	assert.Equal(t, float64(100), CategorySevere.Score())
	assert.Equal(t, float64(0), CategoryUnknown.Score())
}
