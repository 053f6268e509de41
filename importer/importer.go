package importer

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/xinotrix/openproject-app-sheets/openproject"
	"github.com/xinotrix/openproject-app-sheets/wbs"
)

// Remote is the subset of the OpenProject API used to create work packages.
type Remote interface {
	CreateWorkPackage(ctx context.Context, form openproject.WorkPackageForm) (*openproject.WorkPackage, error)
	ProjectHref(project string) string
	TypeHref(id string) string
	WorkPackageHref(id int) string
}

type Options struct {
	Project    string
	PhaseType  string
	TaskType   string
	Attempts   int
	RetryDelay time.Duration
	Delay      time.Duration
	Tag        string
	Debug      bool
}

// Importer creates a work package for each WBS record, parents first.
type Importer struct {
	remote    Remote
	project   string
	phaseType string
	taskType  string
	attempts  int
	backoff   time.Duration
	limit     rate.Limit
	limiter   *rate.Limiter
	registry  *Registry
	tag       string
	debug     bool
}

// Step is a single entry in the creation plan.
type Step struct {
	Record wbs.Record
	Depth  int
	Skip   error
}

type state int

const (
	pending state = iota
	attempting
	retryWithoutParent
	succeeded
	failed
)

func (s state) String() string {
	return [...]string{"pending", "attempting", "retry-without-parent", "succeeded", "failed"}[s]
}

// job tracks the creation of a single work package.
type job struct {
	record        wbs.Record
	form          openproject.WorkPackageForm
	state         state
	attempts      int
	parentDropped bool
	wp            *openproject.WorkPackage
	err           error
}

func New(remote Remote, options Options) *Importer {
	attempts := options.Attempts
	if attempts < 1 {
		attempts = 1
	}

	limit := rate.Inf
	if options.Delay > 0 {
		limit = rate.Every(options.Delay)
	}

	return &Importer{
		remote:    remote,
		project:   options.Project,
		phaseType: options.PhaseType,
		taskType:  options.TaskType,
		attempts:  attempts,
		backoff:   options.RetryDelay,
		limit:     limit,
		limiter:   rate.NewLimiter(limit, 1),
		registry:  NewRegistry(),
		tag:       options.Tag,
		debug:     options.Debug,
	}
}

// Plan resolves the record hierarchy and returns the records in creation order. Records that
// cannot be created are included with the reason in Skip.
func (im *Importer) Plan(records []wbs.Record) ([]Step, *wbs.Hierarchy) {
	h := wbs.Resolve(records)
	steps := []Step{}

	for _, s := range h.Skipped() {
		steps = append(steps, Step{Record: s.Record, Depth: -1, Skip: s.Reason})
	}

	for _, r := range h.Ordered() {
		depth, _ := h.Depth(r.ID)
		steps = append(steps, Step{Record: r, Depth: depth, Skip: r.Invalid()})
	}

	return steps, h
}

// Run creates the work packages for the records. Failures are logged and reported and do not
// abort the run; an error is only returned if the context is cancelled.
func (im *Importer) Run(ctx context.Context, records []wbs.Record) (*Report, error) {
	steps, h := im.Plan(records)

	report := Report{
		Tag:     im.tag,
		Records: len(records),
		Cycles:  h.Cycles(),
	}

	im.infof("found %v records with hierarchy levels up to %v", len(records), len(h.Levels())-1)

	depth := -1
	for _, step := range steps {
		r := step.Record

		if step.Skip != nil {
			im.warnf("skipping row %v: %v (%v)", r.Row, r, step.Skip)
			report.Skipped = append(report.Skipped, wbs.Skipped{Record: r, Reason: step.Skip})
			continue
		}

		if step.Depth != depth {
			depth = step.Depth
			im.infof("processing hierarchy level %v", depth)
		}

		if err := im.limiter.Wait(ctx); err != nil {
			return &report, err
		}

		// no tokens accrue while a request is in progress i.e. the delay follows the request
		im.limiter.SetLimit(0)
		j := im.create(ctx, r)
		im.limiter.SetLimit(im.limit)

		switch j.state {
		case succeeded:
			created := Created{Record: r, ID: j.wp.ID}

			if j.form.HasParent() {
				created.Parent, _ = im.registry.Get(r.Parent)
				im.infof("created %v %v as work package %v (child of %v)", r.Type, r, j.wp.ID, r.Parent)
			} else {
				im.infof("created %v %v as work package %v", r.Type, r, j.wp.ID)
			}

			if err := im.registry.Put(r.ID, j.wp.ID); err != nil {
				im.warnf("%v", err)
			}

			report.Created = append(report.Created, created)

			if _, ok := h.Lookup(r.Parent); ok && r.Parent != "" && !j.form.HasParent() {
				orphan := Orphaned{Record: r, Reason: ParentNotCreated}
				if j.parentDropped {
					orphan.Reason = ParentRejected
				}

				report.Orphaned = append(report.Orphaned, orphan)
			}

		default:
			im.errorf("failed to create %v %v after %v attempts (%v)", r.Type, r, j.attempts, j.err)
			report.Failed = append(report.Failed, Failed{Record: r, Attempts: j.attempts, Err: j.err})
		}

		if err := ctx.Err(); err != nil {
			return &report, err
		}
	}

	for _, r := range records {
		if _, ok := im.registry.Get(r.ID); !ok {
			report.Missing = append(report.Missing, r)
		}
	}

	return &report, nil
}

// create submits a creation request for a record with up to 'attempts' attempts. A rejected
// parent link is dropped (once) and the request is retried immediately, any other failure is
// retried unchanged after the retry delay.
func (im *Importer) create(ctx context.Context, r wbs.Record) *job {
	j := job{
		record: r,
		form:   im.form(r),
		state:  pending,
	}

	for j.state != succeeded && j.state != failed {
		switch j.state {
		case pending, retryWithoutParent:
			j.state = attempting

		case attempting:
			j.attempts++

			wp, err := im.remote.CreateWorkPackage(ctx, j.form)
			switch {
			case err == nil:
				j.wp = wp
				j.state = succeeded

			case ctx.Err() != nil:
				j.err = err
				j.state = failed

			case j.attempts >= im.attempts:
				j.err = err
				j.state = failed

			case j.form.HasParent() && openproject.IsParentConflict(err):
				im.warnf("error creating %v (attempt %v/%v): %v", r, j.attempts, im.attempts, err)
				im.warnf("conflict when setting parent of %v - retrying without parent relationship", r)
				j.form = j.form.WithoutParent()
				j.parentDropped = true
				j.state = retryWithoutParent

			default:
				im.warnf("error creating %v (attempt %v/%v): %v", r, j.attempts, im.attempts, err)
				if err := sleep(ctx, im.backoff); err != nil {
					j.err = err
					j.state = failed
				}
			}

		default:
			panic(fmt.Sprintf("invalid job state %v", j.state))
		}
	}

	return &j
}

// Registry returns the WBS ID to work package ID mapping built up by Run.
func (im *Importer) Registry() *Registry {
	return im.registry
}

func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (im *Importer) debugf(format string, args ...any) {
	if im.debug {
		im.printf("DEBUG", format, args...)
	}
}

func (im *Importer) infof(format string, args ...any) {
	im.printf("INFO", format, args...)
}

func (im *Importer) warnf(format string, args ...any) {
	im.printf("WARN", format, args...)
}

func (im *Importer) errorf(format string, args ...any) {
	im.printf("ERROR", format, args...)
}

func (im *Importer) printf(level string, format string, args ...any) {
	if im.tag != "" {
		log.Printf("%-5s %v  %v", level, im.tag, fmt.Sprintf(format, args...))
	} else {
		log.Printf("%-5s %v", level, fmt.Sprintf(format, args...))
	}
}
