package wbs

import (
	"fmt"
	"log"
	"sort"
)

// Hierarchy is the set of records for an import, keyed by WBS ID, together with the depth of
// each record in its parent chain (0 for a root).
type Hierarchy struct {
	records map[string]*Record
	order   []string
	depths  map[string]int
	cycles  []string
	skipped []Skipped
}

// Skipped is a record that was dropped at ingestion, along with the reason.
type Skipped struct {
	Record Record
	Reason error
}

// Resolve validates the records and computes the depth of every record with a WBS ID.
//
// Records without a WBS ID cannot be placed in the hierarchy and are returned by Skipped, as
// are rows that repeat a WBS ID already seen (the first occurrence wins). Records that are
// missing a type or name are kept: they still anchor the depth of their children but are not
// Eligible for creation.
//
// A record whose parent is blank or not in the set is a root. A parent chain that loops back
// on itself is broken at the first record revisited, which is treated as a root.
func Resolve(records []Record) *Hierarchy {
	h := Hierarchy{
		records: map[string]*Record{},
		depths:  map[string]int{},
	}

	for _, r := range records {
		record := r
		record.Validate()

		if record.ID == "" {
			h.skipped = append(h.skipped, Skipped{Record: record, Reason: ErrMissingID})
			continue
		}

		if _, ok := h.records[record.ID]; ok {
			h.skipped = append(h.skipped, Skipped{Record: record, Reason: ErrDuplicateID})
			continue
		}

		h.records[record.ID] = &record
		h.order = append(h.order, record.ID)
	}

	h.resolve()

	return &h
}

func (h *Hierarchy) resolve() {
	ids := make([]string, len(h.order))
	copy(ids, h.order)
	sort.Strings(ids)

	for _, id := range ids {
		if _, ok := h.depths[id]; ok {
			continue
		}

		stack := []string{}
		visited := map[string]bool{}
		base := -1
		node := id

	walk:
		for {
			if d, ok := h.depths[node]; ok {
				base = d
				break walk
			}

			if visited[node] {
				log.Printf("%-5s circular parent reference detected for WBS ID %v - treating it as a root", "WARN", node)
				h.depths[node] = 0
				h.cycles = append(h.cycles, node)
				base = 0
				break walk
			}

			visited[node] = true
			stack = append(stack, node)

			parent := h.records[node].Parent
			if _, ok := h.records[parent]; parent == "" || !ok {
				break walk
			}

			node = parent
		}

		for i := len(stack) - 1; i >= 0; i-- {
			if d, ok := h.depths[stack[i]]; ok {
				base = d
				continue
			}

			base++
			h.depths[stack[i]] = base
		}
	}
}

// Lookup returns the record for a WBS ID.
func (h *Hierarchy) Lookup(id string) (Record, bool) {
	if r, ok := h.records[id]; ok && r != nil {
		return *r, true
	}

	return Record{}, false
}

// Depth returns the depth of a WBS ID, or false if the WBS ID is not in the hierarchy.
func (h *Hierarchy) Depth(id string) (int, bool) {
	d, ok := h.depths[id]

	return d, ok
}

func (h *Hierarchy) Depths() map[string]int {
	depths := make(map[string]int, len(h.depths))
	for k, v := range h.depths {
		depths[k] = v
	}

	return depths
}

// Levels returns the WBS IDs grouped by depth, starting at depth 0. Each level is sorted by
// WBS ID.
func (h *Hierarchy) Levels() [][]string {
	deepest := -1
	for _, d := range h.depths {
		if d > deepest {
			deepest = d
		}
	}

	levels := make([][]string, deepest+1)
	for i := range levels {
		levels[i] = []string{}
	}

	for id, d := range h.depths {
		levels[d] = append(levels[d], id)
	}

	for _, level := range levels {
		sort.Strings(level)
	}

	return levels
}

// Ordered returns the records in creation order i.e. by depth and then by WBS ID.
func (h *Hierarchy) Ordered() []Record {
	list := []Record{}
	for _, level := range h.Levels() {
		for _, id := range level {
			list = append(list, *h.records[id])
		}
	}

	return list
}

// Cycles returns the WBS IDs at which circular parent chains were broken.
func (h *Hierarchy) Cycles() []string {
	return append([]string{}, h.cycles...)
}

func (h *Hierarchy) Skipped() []Skipped {
	return append([]Skipped{}, h.skipped...)
}

func (h *Hierarchy) Len() int {
	return len(h.order)
}

func (s Skipped) String() string {
	return fmt.Sprintf("row %v: %v (%v)", s.Record.Row, s.Record, s.Reason)
}
