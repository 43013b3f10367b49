// Package models defines the plan document entities shared by the API and
// the itinerary engine.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayStart is the start time given to the first item of an empty plan.
const DayStart = "09:00"

// Category is a named, colored tag applied to items. Items reference
// categories by ID; the reference is not enforced, a deleted category
// leaves a dangling ID resolved at read time via FallbackCategory.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Link is an external reference attached to an item.
type Link struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Item is a single scheduled activity. Times are local "HH:MM" clock
// strings; inverted or overlapping ranges are legal and tolerated by the
// timeline projector. Budget is free-form text, parsed only at aggregation.
// Images are opaque encoded blobs (data URLs in practice).
type Item struct {
	ID        string   `json:"id"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Title     string   `json:"title"`
	Memo      string   `json:"memo"`
	Location  string   `json:"location"`
	Category  string   `json:"category"`
	Budget    string   `json:"budget"`
	Images    []string `json:"images"`
	Links     []Link   `json:"links"`
}

// BudgetAmount parses the item budget, treating anything non-numeric as 0.
// A numeric prefix counts: "500円" is 500.
func (i Item) BudgetAmount() int {
	s := strings.TrimSpace(i.Budget)
	if s == "" {
		return 0
	}
	end := 0
	if s[0] == '-' || s[0] == '+' {
		end = 1
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Plan is a named, dated itinerary. Items keep insertion order; display
// order is recomputed per projection.
type Plan struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Items []Item `json:"items"`
}

// PlanSet is the persisted unit: the full plan collection of the single
// authenticated user. The wire name for Categories is "cats" and for
// CurrentID "curId"; existing saved documents use these short keys.
type PlanSet struct {
	Plans      []Plan     `json:"plans"`
	Categories []Category `json:"cats"`
	CurrentID  string     `json:"curId,omitempty"`
}

// FallbackCategory resolves dangling category references at display time.
var FallbackCategory = Category{ID: "other", Name: "その他", Color: "#ccc"}

// DefaultCategories are seeded into a fresh plan set.
func DefaultCategories() []Category {
	return []Category{
		{ID: "food", Name: "食事", Color: "#f97316"},
		{ID: "cafe", Name: "カフェ", Color: "#a855f7"},
		{ID: "shopping", Name: "買い物", Color: "#ec4899"},
		{ID: "transport", Name: "移動", Color: "#3b82f6"},
		{ID: "sightseeing", Name: "観光", Color: "#10b981"},
	}
}

// NewPlanSet returns the initial document for a user with no saved data:
// one empty plan dated today plus the default categories.
func NewPlanSet(now time.Time) PlanSet {
	planID := uuid.New().String()
	return PlanSet{
		Plans: []Plan{{
			ID:    planID,
			Name:  "新しいプラン",
			Date:  now.Format("2006-01-02"),
			Items: []Item{},
		}},
		Categories: DefaultCategories(),
		CurrentID:  planID,
	}
}

// AddHour shifts an "HH:MM" clock string forward by h hours, clamping the
// hour component at 23. Malformed input yields DayStart, the same default
// used when an item has no previous end time to chain from.
func AddHour(t string, h int) string {
	hh, mm, ok := SplitClock(t)
	if !ok {
		return DayStart
	}
	hh += h
	if hh > 23 {
		hh = 23
	}
	return fmt.Sprintf("%02d:%02d", hh, mm)
}

// SplitClock parses an "HH:MM" string. ok is false when the string does not
// have two numeric colon-separated fields.
func SplitClock(t string) (hour, minute int, ok bool) {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}
