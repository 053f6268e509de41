package importer

import (
	"fmt"
)

// Registry maps WBS IDs to the IDs of the work packages created for them. Entries are only
// ever added, never updated or removed.
type Registry struct {
	ids   map[string]int
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		ids: map[string]int{},
	}
}

func (r *Registry) Put(wbsID string, id int) error {
	if existing, ok := r.ids[wbsID]; ok {
		return fmt.Errorf("WBS ID %v already registered as work package %v", wbsID, existing)
	}

	r.ids[wbsID] = id
	r.order = append(r.order, wbsID)

	return nil
}

func (r *Registry) Get(wbsID string) (int, bool) {
	id, ok := r.ids[wbsID]

	return id, ok
}

func (r *Registry) Len() int {
	return len(r.ids)
}

// WBSIDs returns the registered WBS IDs in the order in which they were added.
func (r *Registry) WBSIDs() []string {
	return append([]string{}, r.order...)
}
