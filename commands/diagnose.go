package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xinotrix/openproject-app-sheets/openproject"
)

var DiagnoseCmd = Diagnose{
	workpackage: 0,
	test:        false,
	debug:       false,
}

type Diagnose struct {
	workpackage int
	test        bool
	debug       bool
}

func (cmd *Diagnose) Name() string {
	return "diagnose"
}

func (cmd *Diagnose) Description() string {
	return "Lists the OpenProject projects and work package types available to the configured API key"
}

func (cmd *Diagnose) Usage() string {
	return "[--work-package <id>] [--create-test]"
}

func (cmd *Diagnose) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] diagnose [options]\n", APP)
	fmt.Println()
	fmt.Println("  Lists the projects and work package types accessible with the configured API key, for use as the")
	fmt.Println("  'project', 'phase-type' and 'task-type' settings in the configuration file.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    openproject-app-sheets --config example.toml diagnose`)
	fmt.Println(`    openproject-app-sheets --config example.toml diagnose --work-package 405`)
	fmt.Println()
}

func (cmd *Diagnose) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("diagnose", flag.ExitOnError)

	flagset.IntVar(&cmd.workpackage, "work-package", cmd.workpackage, "Retrieves and displays a work package")
	flagset.BoolVar(&cmd.test, "create-test", cmd.test, "Creates a test work package in the configured project with the configured task type")

	return flagset
}

func (cmd *Diagnose) Execute(args ...any) error {
	options := args[0].(*Options)
	ctx := context.Background()

	cmd.debug = options.Debug

	cfg, err := loadConfig(options)
	if err != nil {
		return err
	}

	client, err := newClient(cfg, cmd.debug)
	if err != nil {
		return err
	}

	projects, err := client.Projects(ctx)
	if err != nil {
		return fmt.Errorf("error fetching projects (%w)", err)
	}

	types, err := client.Types(ctx)
	if err != nil {
		return fmt.Errorf("error fetching work package types (%w)", err)
	}

	printProjects(os.Stdout, projects)
	printTypes(os.Stdout, types)

	if cmd.workpackage > 0 {
		wp, err := client.WorkPackage(ctx, cmd.workpackage)
		if err != nil {
			return fmt.Errorf("error fetching work package %v (%w)", cmd.workpackage, err)
		}

		if err := printJSON(os.Stdout, "Work package", wp); err != nil {
			return err
		}
	}

	if cmd.test {
		if strings.TrimSpace(cfg.OpenProject.Project) == "" {
			return fmt.Errorf("--create-test requires a 'project' in the configuration file")
		}

		form := openproject.WorkPackageForm{
			Links: openproject.FormLinks{
				Project: openproject.Link{Href: client.ProjectHref(cfg.OpenProject.Project)},
				Type:    openproject.Link{Href: client.TypeHref(cfg.OpenProject.TaskType)},
			},
			Subject: "Test Work Package",
			Description: openproject.Formattable{
				Raw: "This is a test work package to verify API functionality",
			},
		}

		wp, err := client.CreateWorkPackage(ctx, form)
		if err != nil {
			printJSON(os.Stdout, "Rejected payload", form)
			return fmt.Errorf("error creating test work package (%w)", err)
		}

		infof("created test work package %v", wp)

		if err := printJSON(os.Stdout, "Successful payload", form); err != nil {
			return err
		}
	}

	return nil
}

func printProjects(w io.Writer, projects []openproject.Project) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Projects:")
	for _, p := range projects {
		fmt.Fprintf(w, "    %-6v %-24v %v\n", p.ID, p.Identifier, p.Name)
	}
	fmt.Fprintln(w)
}

func printTypes(w io.Writer, types []openproject.Type) {
	fmt.Fprintln(w, "  Work package types:")
	for _, t := range types {
		fmt.Fprintf(w, "    %-6v %v\n", t.ID, t.Name)
	}
	fmt.Fprintln(w)
}

func printJSON(w io.Writer, title string, v any) error {
	bytes, err := json.MarshalIndent(v, "    ", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  %v:\n", title)
	fmt.Fprintf(w, "    %s\n", bytes)
	fmt.Fprintln(w)

	return nil
}
