package cleanup

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/xinotrix/openproject-app-sheets/openproject"
)

// Remote is the subset of the OpenProject API used to empty a project.
type Remote interface {
	WorkPackages(ctx context.Context, project string, pageSize int) ([]openproject.WorkPackage, error)
	DeleteWorkPackage(ctx context.Context, id int) error
}

type Options struct {
	Project  string
	Attempts int
	PageSize int
	Delay    time.Duration
	Debug    bool
}

// Cleaner deletes all the work packages in a project, children before parents.
type Cleaner struct {
	remote   Remote
	project  string
	attempts int
	pageSize int
	limit    rate.Limit
	limiter  *rate.Limiter
	debug    bool
}

// Report is the outcome of a cleanup. Remaining work packages could not be deleted and need to be
// removed manually.
type Report struct {
	Fetched   int
	Deleted   int
	Failed    int
	Passes    int
	Remaining []openproject.WorkPackage
}

func New(remote Remote, options Options) *Cleaner {
	attempts := options.Attempts
	if attempts < 1 {
		attempts = 1
	}

	pageSize := options.PageSize
	if pageSize < 1 {
		pageSize = openproject.DefaultPageSize
	}

	limit := rate.Inf
	if options.Delay > 0 {
		limit = rate.Every(options.Delay)
	}

	return &Cleaner{
		remote:   remote,
		project:  options.Project,
		attempts: attempts,
		pageSize: pageSize,
		limit:    limit,
		limiter:  rate.NewLimiter(limit, 1),
		debug:    options.Debug,
	}
}

// Run deletes the leaf work packages of the project and then re-fetches the project, repeating
// until the project is empty or the number of attempts is exhausted. A work package that has
// already been deleted is counted as deleted.
func (c *Cleaner) Run(ctx context.Context) (*Report, error) {
	report := Report{}

	for attempt := 1; attempt <= c.attempts; attempt++ {
		list, err := c.remote.WorkPackages(ctx, c.project, c.pageSize)
		if err != nil {
			return &report, fmt.Errorf("error retrieving work packages for project %v (%w)", c.project, err)
		}

		if attempt == 1 {
			report.Fetched = len(list)
		}

		if len(list) == 0 {
			infof("project %v has no work packages", c.project)
			return &report, nil
		}

		leaves := Leaves(list)

		infof("attempt %v/%v: %v work packages, deleting %v leaf work packages", attempt, c.attempts, len(list), len(leaves))

		report.Passes++
		for _, wp := range leaves {
			if err := c.limiter.Wait(ctx); err != nil {
				return &report, err
			}

			c.limiter.SetLimit(0)
			err := c.delete(ctx, wp)
			c.limiter.SetLimit(c.limit)

			if err != nil {
				if ctx.Err() != nil {
					return &report, ctx.Err()
				}

				report.Failed++
				warnf("error deleting work package %v (%v)", wp, err)
			} else {
				report.Deleted++
			}
		}
	}

	remaining, err := c.remote.WorkPackages(ctx, c.project, c.pageSize)
	if err != nil {
		return &report, fmt.Errorf("error retrieving remaining work packages for project %v (%w)", c.project, err)
	}

	report.Remaining = remaining

	if len(remaining) > 0 {
		warnf("%v work packages could not be deleted after %v attempts and need to be removed manually", len(remaining), c.attempts)
		for _, wp := range remaining {
			warnf("  %v", wp)
		}
	}

	return &report, nil
}

func (c *Cleaner) delete(ctx context.Context, wp openproject.WorkPackage) error {
	err := c.remote.DeleteWorkPackage(ctx, wp.ID)
	switch {
	case err == nil:
		debugf(c.debug, "deleted work package %v", wp)
		return nil

	case openproject.IsNotFound(err):
		debugf(c.debug, "work package %v already deleted", wp)
		return nil

	default:
		return err
	}
}

// Leaves returns the work packages that are not the parent of any other work package in the list,
// in the order in which they appear in the list.
func Leaves(list []openproject.WorkPackage) []openproject.WorkPackage {
	children := map[int]int{}
	for _, wp := range list {
		if parent, ok := wp.Parent(); ok {
			children[parent]++
		}
	}

	leaves := []openproject.WorkPackage{}
	for _, wp := range list {
		if children[wp.ID] == 0 {
			leaves = append(leaves, wp)
		}
	}

	return leaves
}

func debugf(debug bool, format string, args ...any) {
	if debug {
		log.Printf("%-5s %v", "DEBUG", fmt.Sprintf(format, args...))
	}
}

func infof(format string, args ...any) {
	log.Printf("%-5s %v", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %v", "WARN", fmt.Sprintf(format, args...))
}
