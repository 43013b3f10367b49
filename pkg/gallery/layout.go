// Package gallery packs variable-aspect-ratio images into fixed-width rows
// of near-equal height (a justified layout). The engine is pure and
// deterministic: the same ratios and dimensions always produce the same
// boxes, which is what makes the layout testable.
package gallery

// Options controls a layout pass.
type Options struct {
	// TargetRowHeight is the height a row aims for before justification.
	TargetRowHeight float64
	// ContainerWidth is the width every closed row must span exactly.
	ContainerWidth float64
	// Gap is the spacing between images, horizontally and between rows.
	Gap float64
}

// Image is a layout input. Ratio is width/height; zero means the natural
// ratio is not resolved yet and a square is assumed until it is.
type Image struct {
	Key   string
	Ratio float64
}

// Box is the placement computed for one image.
type Box struct {
	Key    string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Row groups the boxes sharing one baseline.
type Row struct {
	Height float64
	Boxes  []Box
}

// Result is a full layout: rows top to bottom, boxes left to right, input
// order preserved.
type Result struct {
	Rows        []Row
	TotalHeight float64
}

// lastRowStretchLimit caps how far a sparse final row may be stretched
// before the target height is kept instead.
const lastRowStretchLimit = 1.5

// Layout runs the greedy single-pass row fill. An image joins the current
// row while the running width plus the image and gap still fits the
// container; otherwise the row is closed and a new one started. Closed rows
// are scaled so their images span the container edge to edge. The last row
// is exempt from stretching when it holds fewer than 3 images: it keeps the
// target height unless even that overflows the container, in which case it
// is clamped down to fit.
func Layout(images []Image, opts Options) Result {
	if len(images) == 0 {
		return Result{}
	}

	type pending struct {
		items      []Image
		totalRatio float64
	}

	var rows []pending
	var current pending
	currentWidth := 0.0

	for _, img := range images {
		ratio := img.Ratio
		if ratio <= 0 {
			ratio = 1
		}
		resolved := Image{Key: img.Key, Ratio: ratio}

		width := opts.TargetRowHeight * ratio
		newWidth := currentWidth + width
		if len(current.items) > 0 {
			newWidth += opts.Gap
		}

		if newWidth > opts.ContainerWidth && len(current.items) > 0 {
			rows = append(rows, current)
			current = pending{items: []Image{resolved}, totalRatio: ratio}
			currentWidth = width
		} else {
			current.items = append(current.items, resolved)
			current.totalRatio += ratio
			currentWidth = newWidth
		}
	}
	rows = append(rows, current)

	result := Result{Rows: make([]Row, 0, len(rows))}
	y := 0.0
	for i, row := range rows {
		gaps := float64(len(row.items)-1) * opts.Gap
		available := opts.ContainerWidth - gaps

		height := available / row.totalRatio
		if last := i == len(rows)-1; last && len(row.items) < 3 {
			natural := height
			if natural > opts.TargetRowHeight {
				height = opts.TargetRowHeight
			}
			if natural > opts.TargetRowHeight*lastRowStretchLimit {
				height = opts.TargetRowHeight
			}
		}

		out := Row{Height: height, Boxes: make([]Box, 0, len(row.items))}
		x := 0.0
		for _, img := range row.items {
			width := height * img.Ratio
			out.Boxes = append(out.Boxes, Box{
				Key:    img.Key,
				X:      x,
				Y:      y,
				Width:  width,
				Height: height,
			})
			x += width + opts.Gap
		}
		result.Rows = append(result.Rows, out)
		y += height + opts.Gap
	}

	result.TotalHeight = y - opts.Gap
	return result
}
