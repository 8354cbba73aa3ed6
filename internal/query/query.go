// Package query answers read-only questions over loaded stores. Results never
// alias the input containers, but records are shared, not copied.
package query

import (
	"sort"
	"strings"

	"github.com/ThiagoRGoveia/treatment-records/internal/models"
	"github.com/ThiagoRGoveia/treatment-records/internal/store"
)

// Approved returns a store with the records of s that carry at least one
// approved plan. Unapproved plans inside those records are left in place.
func Approved[T models.Entry](s *store.Store[T]) *store.Store[T] {
	out := s.EmptyCopy()
	for _, v := range s.Values() {
		if v.HasApproved() {
			out.Put(v)
		}
	}
	return out
}

// ApprovedCollection applies Approved to every database of c.
func ApprovedCollection[T models.Entry](c *store.Collection[T]) *store.Collection[T] {
	out := c.EmptyCopy()
	for _, name := range c.Names() {
		s, _ := c.Get(name)
		out.Add(Approved(s))
	}
	return out
}

// PlanNamesContaining returns the distinct names of unapproved plans whose
// name contains find, ignoring case, in first-seen order.
func PlanNamesContaining[T models.Entry](entries []T, find string) []string {
	find = strings.ToLower(find)
	seen := make(map[string]bool)
	names := []string{}
	for _, e := range entries {
		for _, plan := range e.Plans() {
			if plan.Approved || seen[plan.Name] {
				continue
			}
			if strings.Contains(strings.ToLower(plan.Name), find) {
				seen[plan.Name] = true
				names = append(names, plan.Name)
			}
		}
	}
	return names
}

// CollectionPlanNamesContaining runs PlanNamesContaining over every database
// of c, visiting databases in name order.
func CollectionPlanNamesContaining[T models.Entry](c *store.Collection[T], find string) []string {
	var entries []T
	for _, name := range c.Names() {
		s, _ := c.Get(name)
		entries = append(entries, s.Values()...)
	}
	return PlanNamesContaining(entries, find)
}

// RegionNames returns the sorted distinct region names across every database
// of c, leaving out names that contain any of deny, ignoring case.
func RegionNames[T models.Entry](c *store.Collection[T], deny []string) []string {
	lowered := make([]string, 0, len(deny))
	for _, d := range deny {
		if d = strings.TrimSpace(d); d != "" {
			lowered = append(lowered, strings.ToLower(d))
		}
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, name := range c.Names() {
		s, _ := c.Get(name)
		for _, v := range s.Values() {
			for _, region := range v.RegionNames() {
				if seen[region] || denied(region, lowered) {
					continue
				}
				seen[region] = true
				names = append(names, region)
			}
		}
	}
	sort.Strings(names)
	return names
}

func denied(name string, deny []string) bool {
	name = strings.ToLower(name)
	for _, d := range deny {
		if strings.Contains(name, d) {
			return true
		}
	}
	return false
}

// SelectByMRN returns a collection holding only the records whose MRN matches
// one of mrns. The same tolerant matching as directory loading applies.
// Databases left empty are dropped, so an empty mrns selects nothing.
func SelectByMRN[T models.Entry](c *store.Collection[T], mrns []string) *store.Collection[T] {
	out := c.EmptyCopy()
	if len(mrns) == 0 {
		return out
	}
	filter := store.NewFilter(mrns)
	for _, name := range c.Names() {
		s, _ := c.Get(name)
		selected := s.EmptyCopy()
		for _, v := range s.Values() {
			if filter.Match(v.Identifier()) {
				selected.Put(v)
			}
		}
		if selected.Len() > 0 {
			out.Add(selected)
		}
	}
	return out
}
