package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/sheets/v4"

	"github.com/xinotrix/openproject-app-sheets/importer"
	"github.com/xinotrix/openproject-app-sheets/wbs"
)

var ImportCmd = Import{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		url:         "",
		debug:       false,
	},

	area:         "",
	file:         "",
	project:      "",
	reportRange:  "",
	logRange:     "",
	logRetention: 30,
	dryrun:       false,
}

type Import struct {
	command
	area         string
	file         string
	project      string
	reportRange  string
	logRange     string
	logRetention uint
	dryrun       bool
}

func (cmd *Import) Name() string {
	return "import"
}

func (cmd *Import) Description() string {
	return "Creates OpenProject work packages from the WBS records in a Google Sheets worksheet or TSV file"
}

func (cmd *Import) Usage() string {
	return "--url <url> --range <range> | --file <file>"
}

func (cmd *Import) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] import [options] --url <URL> --range <range>\n", APP)
	fmt.Printf("         %s [--debug] [--config <file>] import [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Creates a work package in an OpenProject project for each WBS record, parents before children. The")
	fmt.Println("  WBS records are read from a Google Sheets worksheet or a TSV file with the columns 'WBS ID', 'Parent WBS ID',")
	fmt.Println("  'Type', 'Name', 'Description' and 'Estimated Hours'.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    openproject-app-sheets --debug import --credentials "credentials.json" \`)
	fmt.Println(`                                          --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                                          --range "WBS!A1:F" \`)
	fmt.Println(`                                          --report-range "Report!A1:F"`)
	fmt.Println()
	fmt.Println(`    openproject-app-sheets --config example.toml import --file "wbs.tsv" --project 3 --dry-run`)
	fmt.Println()
}

func (cmd *Import) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("import")

	flagset.StringVar(&cmd.area, "range", cmd.area, "Spreadsheet range e.g. 'WBS!A1:F'")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file with the WBS records (instead of a worksheet)")
	flagset.StringVar(&cmd.project, "project", cmd.project, "OpenProject project ID. Defaults to the configured project")
	flagset.StringVar(&cmd.reportRange, "report-range", cmd.reportRange, "Spreadsheet range for the import report e.g. 'Report!A1:F'")
	flagset.StringVar(&cmd.logRange, "log-range", cmd.logRange, "Spreadsheet range for the import log e.g. 'Log!A1:H'")
	flagset.UintVar(&cmd.logRetention, "log-retention", cmd.logRetention, "Log sheet records older than 'log-retention' days are pruned. 0 disables pruning")
	flagset.BoolVar(&cmd.dryrun, "dry-run", cmd.dryrun, "Lists the work packages that would be created without creating them")

	return flagset
}

func (cmd *Import) Execute(args ...any) error {
	options := args[0].(*Options)
	ctx := context.Background()

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.url) == "" && strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("either --url or --file is a required option")
	}

	if strings.TrimSpace(cmd.url) != "" && strings.TrimSpace(cmd.file) != "" {
		return fmt.Errorf("--url and --file are mutually exclusive options")
	}

	spreadsheet := ""
	if strings.TrimSpace(cmd.url) != "" {
		if id, err := spreadsheetID(cmd.url); err != nil {
			return err
		} else {
			spreadsheet = id
		}

		if strings.TrimSpace(cmd.area) == "" {
			return fmt.Errorf("--range is a required option")
		} else if err := checkRange("range", cmd.area, "WBS!A1:F"); err != nil {
			return err
		}
	}

	if cmd.reportRange != "" || cmd.logRange != "" {
		if spreadsheet == "" {
			return fmt.Errorf("--report-range and --log-range require a spreadsheet --url")
		}

		if cmd.reportRange != "" {
			if err := checkRange("report-range", cmd.reportRange, "Report!A1:F"); err != nil {
				return err
			}
		}

		if cmd.logRange != "" {
			if err := checkRange("log-range", cmd.logRange, "Log!A1:H"); err != nil {
				return err
			}
		}
	}

	cfg, err := loadConfig(options)
	if err != nil {
		return err
	}

	if cmd.project != "" {
		cfg.OpenProject.Project = cmd.project
	}

	if strings.TrimSpace(cfg.OpenProject.Project) == "" {
		return fmt.Errorf("--project is a required option (or set 'project' in the configuration file)")
	}

	// ... get WBS records
	var records []wbs.Record
	var service *sheets.Service

	if spreadsheet != "" {
		scope := SHEETS_READONLY
		if cmd.reportRange != "" || cmd.logRange != "" {
			scope = SHEETS
		}

		if cmd.debug {
			debugf("Spreadsheet - ID:%s  range:%s  report:%s  log:%s", spreadsheet, cmd.area, cmd.reportRange, cmd.logRange)
		}

		if service, err = cmd.connect(ctx, scope); err != nil {
			return err
		}

		if records, err = getRecords(ctx, service, spreadsheet, cmd.area); err != nil {
			return err
		}

		infof("retrieved %v WBS records from %v", len(records), cmd.area)
	} else {
		if records, err = readRecords(cmd.file); err != nil {
			return err
		}

		infof("read %v WBS records from %v", len(records), cmd.file)
	}

	tag := uuid.New().String()
	settings := importer.Options{
		Project:    cfg.OpenProject.Project,
		PhaseType:  cfg.OpenProject.PhaseType,
		TaskType:   cfg.OpenProject.TaskType,
		Attempts:   cfg.Import.Attempts,
		RetryDelay: cfg.Import.RetryDelay.Duration(),
		Delay:      cfg.Import.Delay.Duration(),
		Tag:        tag,
		Debug:      cmd.debug,
	}

	if cmd.dryrun {
		printPlan(os.Stdout, importer.New(nil, settings), records)
		return nil
	}

	// ... create work packages
	client, err := newClient(cfg, cmd.debug)
	if err != nil {
		return err
	}

	infof("run %v  importing %v WBS records into project %v", tag, len(records), cfg.OpenProject.Project)

	report, err := importer.New(client, settings).Run(ctx, records)
	if report == nil {
		return err
	}

	infof("run %v  %v", tag, report.Summary())
	for _, line := range report.Lines() {
		infof("%v", line)
	}

	if service != nil {
		if cmd.reportRange != "" {
			if err := updateReportSheet(ctx, service, spreadsheet, cmd.reportRange, report); err != nil {
				return err
			}
		}

		if cmd.logRange != "" {
			if err := updateLogSheet(ctx, service, spreadsheet, cmd.logRange, report); err != nil {
				return err
			}

			if cmd.logRetention > 0 {
				if err := pruneLogSheet(ctx, service, spreadsheet, cmd.logRange, cmd.logRetention); err != nil {
					return err
				}
			}
		}
	}

	return err
}

// printPlan lists the records in creation order, indented by hierarchy level.
func printPlan(w io.Writer, im *importer.Importer, records []wbs.Record) {
	steps, h := im.Plan(records)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %v records, %v hierarchy levels\n", len(records), len(h.Levels()))
	fmt.Fprintln(w)

	for _, step := range steps {
		r := step.Record
		if step.Skip != nil {
			fmt.Fprintf(w, "  SKIP   row %-4v %v (%v)\n", r.Row, r, step.Skip)
			continue
		}

		fmt.Fprintf(w, "  %-6v %v%-5v %v %q\n", step.Depth, strings.Repeat("  ", step.Depth), r.Type, r.ID, r.Name)
	}

	if cycles := h.Cycles(); len(cycles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  circular parent references broken at %v\n", strings.Join(cycles, ", "))
	}

	fmt.Fprintln(w)
}
