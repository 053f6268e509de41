package importer

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xinotrix/openproject-app-sheets/openproject"
	"github.com/xinotrix/openproject-app-sheets/wbs"
)

type stub struct {
	id       int
	requests []openproject.WorkPackageForm
	errors   map[string][]error
	latency  time.Duration
	started  []time.Time
	finished []time.Time
}

func newStub() *stub {
	return &stub{
		id:     100,
		errors: map[string][]error{},
	}
}

func (s *stub) CreateWorkPackage(ctx context.Context, form openproject.WorkPackageForm) (*openproject.WorkPackage, error) {
	s.requests = append(s.requests, form)
	s.started = append(s.started, time.Now())

	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	defer func() {
		s.finished = append(s.finished, time.Now())
	}()

	if list := s.errors[form.Subject]; len(list) > 0 {
		err := list[0]
		s.errors[form.Subject] = list[1:]
		if err != nil {
			return nil, err
		}
	}

	s.id++

	return &openproject.WorkPackage{ID: s.id, Subject: form.Subject}, nil
}

func (s *stub) ProjectHref(project string) string {
	return fmt.Sprintf("/api/v3/projects/%v", project)
}

func (s *stub) TypeHref(id string) string {
	return fmt.Sprintf("/api/v3/types/%v", id)
}

func (s *stub) WorkPackageHref(id int) string {
	return fmt.Sprintf("/api/v3/work_packages/%v", id)
}

func (s *stub) subjects() []string {
	list := []string{}
	for _, v := range s.requests {
		list = append(list, v.Subject)
	}

	return list
}

func options() Options {
	return Options{
		Project:   "3",
		PhaseType: "3",
		TaskType:  "1",
		Attempts:  3,
	}
}

func TestRunCreatesParentBeforeChild(t *testing.T) {
	remote := newStub()
	records := []wbs.Record{
		{ID: "1.1", Parent: "1", Type: "Task", Name: "Child", EstimatedHours: "2.5"},
		{ID: "1", Type: "Phase", Name: "Root"},
	}

	report, err := New(remote, options()).Run(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, remote.requests, 2)
	assert.Equal(t, []string{"Root", "Child"}, remote.subjects())

	root := remote.requests[0]
	assert.Equal(t, "/api/v3/projects/3", root.Links.Project.Href)
	assert.Equal(t, "/api/v3/types/3", root.Links.Type.Href)
	assert.Nil(t, root.Links.Parent)
	assert.Equal(t, "Work package for Root", root.Description.Raw)

	child := remote.requests[1]
	assert.Equal(t, "/api/v3/types/1", child.Links.Type.Href)
	require.NotNil(t, child.Links.Parent)
	assert.Equal(t, "/api/v3/work_packages/101", child.Links.Parent.Href)
	assert.Equal(t, "PT2H30M", child.EstimatedTime)

	assert.Len(t, report.Created, 2)
	assert.Equal(t, 101, report.Created[1].Parent)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Orphaned)
}

func TestRunSkipsIncompleteRecords(t *testing.T) {
	remote := newStub()
	records := []wbs.Record{
		{ID: "1", Type: "Phase", Name: "Root"},
		{ID: "2", Type: "Task"},
		{Type: "Task", Name: "No ID"},
	}

	report, err := New(remote, options()).Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, []string{"Root"}, remote.subjects())
	assert.Len(t, report.Skipped, 2)
	assert.Len(t, report.Missing, 2)
}

func TestRunOrdersByDepth(t *testing.T) {
	remote := newStub()
	records := []wbs.Record{
		{ID: "1.1.1", Parent: "1.1", Type: "Task", Name: "C"},
		{ID: "2", Type: "Phase", Name: "D"},
		{ID: "1.1", Parent: "1", Type: "Task", Name: "B"},
		{ID: "1", Type: "Phase", Name: "A"},
	}

	_, err := New(remote, options()).Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "D", "B", "C"}, remote.subjects())
}

func TestRunRetriesFailedRequests(t *testing.T) {
	remote := newStub()
	remote.errors["Root"] = []error{
		&openproject.Error{Status: http.StatusInternalServerError},
		&openproject.Error{Status: http.StatusBadGateway},
	}

	records := []wbs.Record{
		{ID: "1", Type: "Phase", Name: "Root"},
	}

	report, err := New(remote, options()).Run(context.Background(), records)
	require.NoError(t, err)

	assert.Len(t, remote.requests, 3)
	assert.Len(t, report.Created, 1)
	assert.Empty(t, report.Failed)
}

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	remote := newStub()
	remote.errors["Root"] = []error{
		&openproject.Error{Status: http.StatusInternalServerError},
		&openproject.Error{Status: http.StatusInternalServerError},
		&openproject.Error{Status: http.StatusInternalServerError},
		&openproject.Error{Status: http.StatusInternalServerError},
	}

	records := []wbs.Record{
		{ID: "1", Type: "Phase", Name: "Root"},
		{ID: "1.1", Parent: "1", Type: "Task", Name: "Child"},
	}

	report, err := New(remote, options()).Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, []string{"Root", "Root", "Root", "Child"}, remote.subjects())

	require.Len(t, report.Failed, 1)
	assert.Equal(t, "1", report.Failed[0].Record.ID)
	assert.Equal(t, 3, report.Failed[0].Attempts)

	require.Len(t, report.Missing, 1)
	assert.Equal(t, "1", report.Missing[0].ID)

	require.Len(t, report.Orphaned, 1)
	assert.Equal(t, "1.1", report.Orphaned[0].Record.ID)
	assert.Equal(t, ParentNotCreated, report.Orphaned[0].Reason)

	assert.Nil(t, remote.requests[3].Links.Parent)
}

func TestRunDropsRejectedParentLink(t *testing.T) {
	remote := newStub()
	remote.errors["Child"] = []error{
		&openproject.Error{Status: http.StatusUnprocessableEntity, Attribute: "parent"},
	}

	records := []wbs.Record{
		{ID: "1", Type: "Phase", Name: "Root"},
		{ID: "1.1", Parent: "1", Type: "Task", Name: "Child"},
	}

	report, err := New(remote, options()).Run(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, remote.requests, 3)
	assert.NotNil(t, remote.requests[1].Links.Parent)
	assert.Nil(t, remote.requests[2].Links.Parent)

	assert.Len(t, report.Created, 2)
	assert.Zero(t, report.Created[1].Parent)

	require.Len(t, report.Orphaned, 1)
	assert.Equal(t, ParentRejected, report.Orphaned[0].Reason)
}

func TestRunDropsParentLinkOnlyOnce(t *testing.T) {
	remote := newStub()
	remote.errors["Child"] = []error{
		&openproject.Error{Status: http.StatusConflict},
		&openproject.Error{Status: http.StatusConflict},
		&openproject.Error{Status: http.StatusConflict},
	}

	records := []wbs.Record{
		{ID: "1", Type: "Phase", Name: "Root"},
		{ID: "1.1", Parent: "1", Type: "Task", Name: "Child"},
	}

	report, err := New(remote, options()).Run(context.Background(), records)
	require.NoError(t, err)

	assert.Len(t, remote.requests, 4)
	for _, form := range remote.requests[2:] {
		assert.Nil(t, form.Links.Parent)
	}

	require.Len(t, report.Failed, 1)
	assert.Equal(t, 3, report.Failed[0].Attempts)
}

func TestRunWithCancelledContext(t *testing.T) {
	remote := newStub()
	records := []wbs.Record{
		{ID: "1", Type: "Phase", Name: "Root"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(remote, options()).Run(ctx, records)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, remote.requests)
}

func TestPlan(t *testing.T) {
	records := []wbs.Record{
		{ID: "1.1", Parent: "1", Type: "Task", Name: "Child"},
		{ID: "1", Type: "Phase", Name: "Root"},
		{ID: "1", Type: "Phase", Name: "Duplicate"},
		{ID: "2", Type: "Task"},
	}

	steps, _ := New(newStub(), options()).Plan(records)

	require.Len(t, steps, 4)
	assert.ErrorIs(t, steps[0].Skip, wbs.ErrDuplicateID)
	assert.Equal(t, "1", steps[1].Record.ID)
	assert.Equal(t, 0, steps[1].Depth)
	assert.Equal(t, "2", steps[2].Record.ID)
	assert.ErrorIs(t, steps[2].Skip, wbs.ErrMissingName)
	assert.Equal(t, "1.1", steps[3].Record.ID)
	assert.Equal(t, 1, steps[3].Depth)
	assert.NoError(t, steps[3].Skip)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Put("1", 101))
	require.NoError(t, r.Put("1.1", 102))
	assert.Error(t, r.Put("1", 103))

	id, ok := r.Get("1")
	assert.True(t, ok)
	assert.Equal(t, 101, id)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"1", "1.1"}, r.WBSIDs())
}

func TestReportLines(t *testing.T) {
	report := Report{
		Records: 3,
		Created: []Created{{Record: wbs.Record{ID: "1.1"}, ID: 102}},
		Missing: []wbs.Record{{ID: "1", Name: "Root"}},
		Orphaned: []Orphaned{
			{Record: wbs.Record{ID: "1.1", Name: "Child", Parent: "1"}, Reason: ParentNotCreated},
		},
	}

	expected := []string{
		"created 1 work packages out of 3 records",
		"1 records were not created:",
		"  - WBS: 1, Name: Root",
		"1 records were created without their parent relationship:",
		"  - WBS: 1.1, Name: Child, Missing Parent: 1 (parent not created)",
		"these work packages may need their parent-child relationship adjusted manually in OpenProject",
	}

	assert.Equal(t, expected, report.Lines())
}

func TestRunDelaysAfterEachCreation(t *testing.T) {
	remote := newStub()
	remote.latency = 60 * time.Millisecond

	records := []wbs.Record{
		{ID: "1", Type: "Phase", Name: "Root"},
		{ID: "1.1", Parent: "1", Type: "Task", Name: "First"},
		{ID: "1.2", Parent: "1", Type: "Task", Name: "Second"},
	}

	settings := options()
	settings.Delay = 40 * time.Millisecond

	report, err := New(remote, settings).Run(context.Background(), records)

	require.NoError(t, err)
	require.Len(t, report.Created, 3)
	require.Len(t, remote.started, 3)

	for i := 1; i < len(remote.started); i++ {
		gap := remote.started[i].Sub(remote.finished[i-1])
		assert.GreaterOrEqual(t, gap, settings.Delay, "gap after request %v", i)
	}
}
