package importer

import (
	"fmt"
	"strings"

	"github.com/xinotrix/openproject-app-sheets/wbs"
)

// Report summarises the outcome of an import. Nothing in the report is retried automatically.
type Report struct {
	Tag      string
	Records  int
	Created  []Created
	Skipped  []wbs.Skipped
	Failed   []Failed
	Missing  []wbs.Record
	Orphaned []Orphaned
	Cycles   []string
}

type Created struct {
	Record wbs.Record
	ID     int
	Parent int
}

type Failed struct {
	Record   wbs.Record
	Attempts int
	Err      error
}

type Orphaned struct {
	Record wbs.Record
	Reason string
}

const (
	ParentNotCreated = "parent not created"
	ParentRejected   = "parent link rejected"
)

func (r Report) Summary() string {
	return fmt.Sprintf("records:%v  created:%v  skipped:%v  failed:%v  orphaned:%v",
		r.Records, len(r.Created), len(r.Skipped), len(r.Failed), len(r.Orphaned))
}

// Lines returns the post-import diagnostics in a form suitable for logging.
func (r Report) Lines() []string {
	lines := []string{
		fmt.Sprintf("created %v work packages out of %v records", len(r.Created), r.Records),
	}

	if len(r.Missing) > 0 {
		lines = append(lines, fmt.Sprintf("%v records were not created:", len(r.Missing)))
		for _, v := range r.Missing {
			lines = append(lines, fmt.Sprintf("  - WBS: %v, Name: %v", v.ID, v.Name))
		}
	}

	if len(r.Orphaned) > 0 {
		lines = append(lines, fmt.Sprintf("%v records were created without their parent relationship:", len(r.Orphaned)))
		for _, v := range r.Orphaned {
			lines = append(lines, fmt.Sprintf("  - WBS: %v, Name: %v, Missing Parent: %v (%v)", v.Record.ID, v.Record.Name, v.Record.Parent, v.Reason))
		}
		lines = append(lines, "these work packages may need their parent-child relationship adjusted manually in OpenProject")
	}

	if len(r.Cycles) > 0 {
		lines = append(lines, fmt.Sprintf("circular parent references were broken at: %v", strings.Join(r.Cycles, ", ")))
	}

	return lines
}
