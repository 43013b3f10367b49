// Package itinerary holds the in-memory plan document and its mutation
// operations. Every mutation replaces the snapshot wholesale instead of
// patching in place, which keeps the sync controller's change detection
// trivial: a new snapshot pointer means there is something to save.
package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cheatday/planner/pkg/models"
)

// ErrMalformedSnapshot is returned by ImportSnapshot when the supplied
// document cannot be parsed. The prior state is left untouched.
var ErrMalformedSnapshot = errors.New("malformed plan document")

// ItemPatch is a partial item update. Nil fields are left unchanged.
type ItemPatch struct {
	StartTime *string
	EndTime   *string
	Title     *string
	Memo      *string
	Location  *string
	Category  *string
	Budget    *string
	Images    *[]string
	Links     *[]models.Link
}

// Model owns a PlanSet snapshot. It is not safe for concurrent mutation;
// there is exactly one writer per session.
type Model struct {
	set models.PlanSet
}

// New returns a model seeded with the initial document.
func New() *Model {
	return &Model{set: models.NewPlanSet(time.Now())}
}

// Hydrate replaces the state from a previously persisted PlanSet.
func Hydrate(set models.PlanSet) *Model {
	m := &Model{set: clone(set)}
	m.normalize()
	return m
}

// Snapshot returns a deep copy of the current state. Mutating the returned
// value never affects the model.
func (m *Model) Snapshot() models.PlanSet {
	return clone(m.set)
}

// CurrentPlan returns the plan selected by CurrentID, falling back to the
// first plan when the ID does not resolve.
func (m *Model) CurrentPlan() models.Plan {
	for _, p := range m.set.Plans {
		if p.ID == m.set.CurrentID {
			return p
		}
	}
	return m.set.Plans[0]
}

// SelectPlan switches the current plan. Unknown IDs are ignored.
func (m *Model) SelectPlan(id string) {
	for _, p := range m.set.Plans {
		if p.ID == id {
			m.set.CurrentID = id
			return
		}
	}
}

// RenamePlan sets the current plan's name.
func (m *Model) RenamePlan(name string) {
	m.mutateCurrent(func(p *models.Plan) { p.Name = name })
}

// SetPlanDate sets the current plan's calendar date.
func (m *Model) SetPlanDate(date string) {
	m.mutateCurrent(func(p *models.Plan) { p.Date = date })
}

// AddItem appends a new item to the current plan and returns it. The start
// time is the previous item's end time (or the day-start default) and the
// end time is one hour later, hour clamped to 23. The category defaults to
// the first configured category.
func (m *Model) AddItem() models.Item {
	plan := m.CurrentPlan()

	start := models.DayStart
	if n := len(plan.Items); n > 0 {
		last := plan.Items[n-1]
		if last.EndTime != "" {
			start = last.EndTime
		} else {
			start = models.AddHour(last.StartTime, 1)
		}
	}

	category := models.FallbackCategory.ID
	if len(m.set.Categories) > 0 {
		category = m.set.Categories[0].ID
	}

	item := models.Item{
		ID:        uuid.New().String(),
		StartTime: start,
		EndTime:   models.AddHour(start, 1),
		Category:  category,
		Images:    []string{},
		Links:     []models.Link{},
	}

	m.mutateCurrent(func(p *models.Plan) {
		p.Items = append(p.Items, item)
	})
	return item
}

// UpdateItem merges the patch into the item with the given ID on the
// current plan. An unknown ID is a no-op.
func (m *Model) UpdateItem(id string, patch ItemPatch) {
	m.mutateCurrent(func(p *models.Plan) {
		for i := range p.Items {
			if p.Items[i].ID != id {
				continue
			}
			applyPatch(&p.Items[i], patch)
			return
		}
	})
}

// DeleteItem removes the item with the given ID from the current plan.
// An unknown ID is a no-op.
func (m *Model) DeleteItem(id string) {
	m.mutateCurrent(func(p *models.Plan) {
		kept := p.Items[:0:0]
		for _, it := range p.Items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		p.Items = kept
	})
}

// AppendImages attaches encoded image blobs to an item.
func (m *Model) AppendImages(itemID string, images []string) {
	m.mutateCurrent(func(p *models.Plan) {
		for i := range p.Items {
			if p.Items[i].ID == itemID {
				p.Items[i].Images = append(p.Items[i].Images, images...)
				return
			}
		}
	})
}

// RemoveImage drops the image at index from an item. Out-of-range indexes
// are ignored.
func (m *Model) RemoveImage(itemID string, index int) {
	m.mutateCurrent(func(p *models.Plan) {
		for i := range p.Items {
			if p.Items[i].ID != itemID {
				continue
			}
			imgs := p.Items[i].Images
			if index < 0 || index >= len(imgs) {
				return
			}
			p.Items[i].Images = append(imgs[:index:index], imgs[index+1:]...)
			return
		}
	})
}

// AddLink attaches a link to an item.
func (m *Model) AddLink(itemID string, link models.Link) {
	m.mutateCurrent(func(p *models.Plan) {
		for i := range p.Items {
			if p.Items[i].ID == itemID {
				p.Items[i].Links = append(p.Items[i].Links, link)
				return
			}
		}
	})
}

// RemoveLink drops the link at index from an item.
func (m *Model) RemoveLink(itemID string, index int) {
	m.mutateCurrent(func(p *models.Plan) {
		for i := range p.Items {
			if p.Items[i].ID != itemID {
				continue
			}
			links := p.Items[i].Links
			if index < 0 || index >= len(links) {
				return
			}
			p.Items[i].Links = append(links[:index:index], links[index+1:]...)
			return
		}
	})
}

// AddCategory creates a category with a fresh ID. Blank or whitespace-only
// names are rejected silently.
func (m *Model) AddCategory(name, color string) {
	if strings.TrimSpace(name) == "" {
		return
	}
	next := m.Snapshot()
	next.Categories = append(next.Categories, models.Category{
		ID:    "c" + uuid.New().String(),
		Name:  name,
		Color: color,
	})
	m.set = next
}

// DeleteCategory removes a category. Deleting the last remaining category
// is refused; items referencing the removed category keep their dangling
// ID and resolve to the fallback at display time.
func (m *Model) DeleteCategory(id string) {
	if len(m.set.Categories) <= 1 {
		return
	}
	next := m.Snapshot()
	kept := next.Categories[:0:0]
	for _, c := range next.Categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	next.Categories = kept
	m.set = next
}

// ResolveCategory maps a category ID to its definition, falling back to the
// neutral category for dangling references.
func (m *Model) ResolveCategory(id string) models.Category {
	for _, c := range m.set.Categories {
		if c.ID == id {
			return c
		}
	}
	return models.FallbackCategory
}

// TotalBudget sums the parsed budgets of the given items. Order-independent
// by construction; unparsable budgets count as zero.
func TotalBudget(items []models.Item) int {
	total := 0
	for _, it := range items {
		total += it.BudgetAmount()
	}
	return total
}

// ImportSnapshot replaces the entire state from an externally supplied JSON
// document. On parse failure the prior state is untouched. The first plan
// becomes current, matching the import behavior of the UI.
func (m *Model) ImportSnapshot(raw []byte) error {
	var set models.PlanSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if len(set.Plans) == 0 {
		return fmt.Errorf("%w: no plans", ErrMalformedSnapshot)
	}
	set.CurrentID = set.Plans[0].ID
	m.set = clone(set)
	m.normalize()
	return nil
}

// ExportSnapshot renders the full state as pretty-printed JSON along with a
// dated filename suggestion for download.
func (m *Model) ExportSnapshot() ([]byte, string, error) {
	out := m.Snapshot()
	out.CurrentID = "" // file interchange carries plans and categories only
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("cheatday-backup-%s.json", time.Now().Format("2006-01-02"))
	return raw, name, nil
}

// mutateCurrent deep-copies the state, applies fn to the current plan and
// swaps the snapshot in.
func (m *Model) mutateCurrent(fn func(*models.Plan)) {
	next := m.Snapshot()
	for i := range next.Plans {
		if next.Plans[i].ID == next.CurrentID {
			fn(&next.Plans[i])
			m.set = next
			return
		}
	}
	if len(next.Plans) > 0 {
		fn(&next.Plans[0])
		m.set = next
	}
}

// normalize restores the invariants a hand-edited or legacy document may
// violate: at least one plan, at least one category, a resolvable current
// ID.
func (m *Model) normalize() {
	if len(m.set.Plans) == 0 {
		m.set = models.NewPlanSet(time.Now())
		return
	}
	if len(m.set.Categories) == 0 {
		m.set.Categories = models.DefaultCategories()
	}
	for _, p := range m.set.Plans {
		if p.ID == m.set.CurrentID {
			return
		}
	}
	m.set.CurrentID = m.set.Plans[0].ID
}

func applyPatch(item *models.Item, patch ItemPatch) {
	if patch.StartTime != nil {
		item.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		item.EndTime = *patch.EndTime
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Memo != nil {
		item.Memo = *patch.Memo
	}
	if patch.Location != nil {
		item.Location = *patch.Location
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.Budget != nil {
		item.Budget = *patch.Budget
	}
	if patch.Images != nil {
		item.Images = append([]string(nil), (*patch.Images)...)
	}
	if patch.Links != nil {
		item.Links = append([]models.Link(nil), (*patch.Links)...)
	}
}

func clone(set models.PlanSet) models.PlanSet {
	out := models.PlanSet{
		Plans:      make([]models.Plan, len(set.Plans)),
		Categories: append([]models.Category(nil), set.Categories...),
		CurrentID:  set.CurrentID,
	}
	for i, p := range set.Plans {
		cp := p
		cp.Items = make([]models.Item, len(p.Items))
		for j, it := range p.Items {
			ci := it
			ci.Images = append([]string(nil), it.Images...)
			ci.Links = append([]models.Link(nil), it.Links...)
			cp.Items[j] = ci
		}
		out.Plans[i] = cp
	}
	return out
}
