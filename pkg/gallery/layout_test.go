package gallery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOpts() Options {
	return Options{TargetRowHeight: 100, ContainerWidth: 620, Gap: 4}
}

func images(ratios ...float64) []Image {
	out := make([]Image, len(ratios))
	for i, r := range ratios {
		out[i] = Image{Key: fmt.Sprintf("img-%d", i), Ratio: r}
	}
	return out
}

func rowSpan(row Row, gap float64) float64 {
	total := float64(len(row.Boxes)-1) * gap
	for _, b := range row.Boxes {
		total += b.Width
	}
	return total
}

func TestLayoutEmpty(t *testing.T) {
	result := Layout(nil, testOpts())
	assert.Empty(t, result.Rows)
}

func TestLayoutFiveWideImages(t *testing.T) {
	// Five 1.5-ratio images at 150px nominal width: four fit in 620
	// (4*150 + 3*4 = 612), the fifth starts the last row alone.
	result := Layout(images(1.5, 1.5, 1.5, 1.5, 1.5), testOpts())

	require.Len(t, result.Rows, 2)
	require.Len(t, result.Rows[0].Boxes, 4)
	require.Len(t, result.Rows[1].Boxes, 1)

	// The closed row is justified edge to edge.
	assert.InDelta(t, 620, rowSpan(result.Rows[0], 4), 0.001)

	// A lone last image would need to stretch far past the limit, so it
	// keeps the target height instead.
	assert.InDelta(t, 100, result.Rows[1].Height, 0.001)
	assert.InDelta(t, 150, result.Rows[1].Boxes[0].Width, 0.001)
}

func TestLayoutClosedRowsSpanContainer(t *testing.T) {
	opts := testOpts()
	result := Layout(images(1, 1.78, 0.5, 1.2, 2.0, 1, 1, 0.75), opts)

	require.NotEmpty(t, result.Rows)
	for i, row := range result.Rows {
		if i == len(result.Rows)-1 && len(row.Boxes) < 3 {
			continue
		}
		assert.InDelta(t, opts.ContainerWidth, rowSpan(row, opts.Gap), 0.001, "row %d", i)
	}
}

func TestLayoutOrderPreserved(t *testing.T) {
	input := images(1.5, 0.5, 1, 2, 1, 0.8)
	result := Layout(input, testOpts())

	var keys []string
	for _, row := range result.Rows {
		for _, box := range row.Boxes {
			keys = append(keys, box.Key)
		}
	}

	require.Len(t, keys, len(input))
	for i, img := range input {
		assert.Equal(t, img.Key, keys[i])
	}
}

func TestLayoutNoOverlap(t *testing.T) {
	opts := testOpts()
	result := Layout(images(1, 1, 1, 1, 1, 1, 1), opts)

	for _, row := range result.Rows {
		for i := 1; i < len(row.Boxes); i++ {
			prev := row.Boxes[i-1]
			cur := row.Boxes[i]
			assert.GreaterOrEqual(t, cur.X, prev.X+prev.Width, "boxes overlap horizontally")
		}
	}

	for i := 1; i < len(result.Rows); i++ {
		prevBottom := result.Rows[i-1].Boxes[0].Y + result.Rows[i-1].Height
		assert.GreaterOrEqual(t, result.Rows[i].Boxes[0].Y, prevBottom, "rows overlap vertically")
	}
}

func TestLayoutUnresolvedRatioAssumesSquare(t *testing.T) {
	result := Layout([]Image{{Key: "a", Ratio: 0}, {Key: "b", Ratio: 1}}, testOpts())

	require.Len(t, result.Rows, 1)
	boxes := result.Rows[0].Boxes
	require.Len(t, boxes, 2)
	assert.InDelta(t, boxes[0].Width, boxes[1].Width, 0.001)
}

func TestLayoutOversizedLastImageClampsToContainer(t *testing.T) {
	// A single panorama wider than the container at target height is
	// clamped down so it still fits edge to edge.
	opts := Options{TargetRowHeight: 100, ContainerWidth: 620, Gap: 4}
	result := Layout(images(8), opts)

	require.Len(t, result.Rows, 1)
	assert.InDelta(t, 620.0/8, result.Rows[0].Height, 0.001)
	assert.InDelta(t, 620, result.Rows[0].Boxes[0].Width, 0.001)
}

func TestLayoutDeterministic(t *testing.T) {
	input := images(1.5, 0.9, 1.2, 2, 0.6)
	a := Layout(input, testOpts())
	b := Layout(input, testOpts())
	assert.Equal(t, a, b)
}

func TestRatioCache(t *testing.T) {
	var updated []string
	cache := NewRatioCache(func(key string) { updated = append(updated, key) })

	assert.InDelta(t, 1.0, cache.Ratio("a"), 0.001)

	cache.Resolve("a", 1.78)
	assert.InDelta(t, 1.78, cache.Ratio("a"), 0.001)
	assert.Equal(t, []string{"a"}, updated)

	// Non-positive ratios are ignored.
	cache.Resolve("a", 0)
	cache.Resolve("a", -2)
	assert.InDelta(t, 1.78, cache.Ratio("a"), 0.001)
	assert.Len(t, updated, 1)

	imgs := cache.Images([]string{"a", "b"})
	require.Len(t, imgs, 2)
	assert.InDelta(t, 1.78, imgs[0].Ratio, 0.001)
	assert.InDelta(t, 1.0, imgs[1].Ratio, 0.001)
}
