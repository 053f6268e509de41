package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/xinotrix/openproject-app-sheets/cleanup"
)

var CleanupCmd = Cleanup{
	project:  "",
	attempts: 0,
	debug:    false,
}

type Cleanup struct {
	project  string
	attempts int
	debug    bool
}

func (cmd *Cleanup) Name() string {
	return "cleanup"
}

func (cmd *Cleanup) Description() string {
	return "Deletes all the work packages in an OpenProject project"
}

func (cmd *Cleanup) Usage() string {
	return "--project <id>"
}

func (cmd *Cleanup) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] cleanup [options] --project <id>\n", APP)
	fmt.Println()
	fmt.Println("  Deletes all the work packages (including closed work packages) in an OpenProject project, children")
	fmt.Println("  before parents. Work packages that cannot be deleted after the configured number of attempts are")
	fmt.Println("  listed for manual removal.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    openproject-app-sheets --config example.toml cleanup --project 3`)
	fmt.Println()
}

func (cmd *Cleanup) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("cleanup", flag.ExitOnError)

	flagset.StringVar(&cmd.project, "project", cmd.project, "OpenProject project ID. Defaults to the configured project")
	flagset.IntVar(&cmd.attempts, "attempts", cmd.attempts, "Maximum number of delete passes. Defaults to the configured number of attempts")

	return flagset
}

func (cmd *Cleanup) Execute(args ...any) error {
	options := args[0].(*Options)
	ctx := context.Background()

	cmd.debug = options.Debug

	cfg, err := loadConfig(options)
	if err != nil {
		return err
	}

	if cmd.project != "" {
		cfg.OpenProject.Project = cmd.project
	}

	if cmd.attempts < 0 {
		return fmt.Errorf("invalid --attempts (%v)", cmd.attempts)
	} else if cmd.attempts > 0 {
		cfg.Cleanup.Attempts = cmd.attempts
	}

	if strings.TrimSpace(cfg.OpenProject.Project) == "" {
		return fmt.Errorf("--project is a required option (or set 'project' in the configuration file)")
	}

	client, err := newClient(cfg, cmd.debug)
	if err != nil {
		return err
	}

	cleaner := cleanup.New(client, cleanup.Options{
		Project:  cfg.OpenProject.Project,
		Attempts: cfg.Cleanup.Attempts,
		PageSize: cfg.Cleanup.PageSize,
		Delay:    cfg.Cleanup.Delay.Duration(),
		Debug:    cmd.debug,
	})

	infof("deleting work packages from project %v", cfg.OpenProject.Project)

	report, err := cleaner.Run(ctx)
	if err != nil {
		return err
	}

	infof("found:%v  deleted:%v  failed:%v  remaining:%v", report.Fetched, report.Deleted, report.Failed, len(report.Remaining))

	if len(report.Remaining) > 0 {
		return fmt.Errorf("%v work packages in project %v could not be deleted", len(report.Remaining), cfg.OpenProject.Project)
	}

	return nil
}
