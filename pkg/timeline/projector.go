// Package timeline projects a plan's item list into the gap-annotated,
// time-ordered sequence the schedule view renders. The projection is pure:
// recomputed from scratch on every call, never persisted, and never
// touching the source items.
package timeline

import (
	"sort"

	"github.com/cheatday/planner/pkg/models"
)

// PxPerMinute converts durations to display heights (1 hour = 150px).
const PxPerMinute = 2.5

// NodeKind discriminates projection nodes.
type NodeKind string

const (
	// KindEvent is a scheduled item.
	KindEvent NodeKind = "event"
	// KindGap is computed idle time between two adjacent items.
	KindGap NodeKind = "gap"
)

// Node is one entry of the projected display sequence. Event nodes carry
// the item plus its duration; gap nodes carry the idle interval.
type Node struct {
	Kind NodeKind

	// Event fields
	Item            models.Item
	DurationMinutes int

	// Gap fields
	GapMinutes int
	FromTime   string
	ToTime     string

	// Display height for the proportional timeline view.
	Height float64
}

// ToMinutes converts an "HH:MM" clock string to minutes since midnight.
// Malformed or absent strings convert to 0.
func ToMinutes(t string) int {
	h, m, ok := models.SplitClock(t)
	if !ok {
		return 0
	}
	return h*60 + m
}

// Project sorts items by start time (stable, so ties keep their stored
// relative order) and walks consecutive pairs, emitting a gap node only for
// a strictly positive idle interval. Overlapping or inverted ranges emit no
// gap: a gap is never negative, overlaps are silently absorbed.
func Project(items []models.Item) []Node {
	if len(items) == 0 {
		return nil
	}

	sorted := append([]models.Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ToMinutes(sorted[i].StartTime) < ToMinutes(sorted[j].StartTime)
	})

	nodes := make([]Node, 0, len(sorted))
	for i, item := range sorted {
		duration := ToMinutes(item.EndTime) - ToMinutes(item.StartTime)
		nodes = append(nodes, Node{
			Kind:            KindEvent,
			Item:            item,
			DurationMinutes: duration,
			Height:          float64(duration) * PxPerMinute,
		})

		if i+1 >= len(sorted) {
			break
		}
		next := sorted[i+1]
		gap := ToMinutes(next.StartTime) - ToMinutes(item.EndTime)
		if gap > 0 {
			nodes = append(nodes, Node{
				Kind:       KindGap,
				GapMinutes: gap,
				FromTime:   item.EndTime,
				ToTime:     next.StartTime,
				Height:     float64(gap) * PxPerMinute,
			})
		}
	}
	return nodes
}
