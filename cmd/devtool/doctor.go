package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

type DoctorCommand struct{}

func (c *DoctorCommand) Name() string {
	return "doctor"
}

func (c *DoctorCommand) Description() string {
	return "Diagnose the environment (tools, database, migrations, server)"
}

// doctorCheck is one diagnosis step. An optional check only warns, and a
// check whose dependency failed is skipped.
type doctorCheck struct {
	name     string
	needs    string
	optional bool
	run      func() error
}

type checkState string

const (
	checkOK      checkState = "ok"
	checkFailed  checkState = "failed"
	checkWarning checkState = "warning"
	checkSkipped checkState = "skipped"
)

type checkResult struct {
	name  string
	state checkState
	err   error
	took  time.Duration
}

func (c *DoctorCommand) Run(args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	baseURL := fs.String("url", getEnv("API_URL", defaultBaseURL), "server base URL")
	skipServer := fs.Bool("skip-server", false, "do not check a running server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	PrintHeader("Running Doctor...")

	checks := []doctorCheck{
		{name: "Dependencies", run: func() error { return (&CheckDepsCommand{}).Run(nil) }},
		{name: "Database", run: func() error { return (&CheckDBCommand{}).Run(nil) }},
		{name: "Migrations", needs: "Database", run: pendingMigrations},
	}
	if !*skipServer {
		checks = append(checks, doctorCheck{
			name:     "Server",
			optional: true,
			run:      func() error { return (&HealthCheckCommand{}).Run([]string{"-url", *baseURL}) },
		})
	}

	results := runChecks(checks)
	PrintHeader("Summary")
	renderSummary(term.out, results)

	if failed := failedChecks(results); len(failed) > 0 {
		return fmt.Errorf("doctor found issues: %s", strings.Join(failed, ", "))
	}
	PrintSuccess("All systems operational!")
	return nil
}

// runChecks runs checks in order
func runChecks(checks []doctorCheck) []checkResult {
	failed := make(map[string]bool, len(checks))
	results := make([]checkResult, 0, len(checks))

	for _, check := range checks {
		if check.needs != "" && failed[check.needs] {
			failed[check.name] = true
			results = append(results, checkResult{name: check.name, state: checkSkipped})
			continue
		}

		start := time.Now()
		err := check.run()
		res := checkResult{name: check.name, state: checkOK, err: err, took: time.Since(start)}
		if err != nil {
			failed[check.name] = true
			res.state = checkFailed
			if check.optional {
				res.state = checkWarning
			}
		}
		results = append(results, res)
	}
	return results
}

func failedChecks(results []checkResult) []string {
	var names []string
	for _, r := range results {
		if r.state == checkFailed {
			names = append(names, r.name)
		}
	}
	return names
}

func renderSummary(out io.Writer, results []checkResult) {
	table := tablewriter.NewWriter(out)
	table.Header("Check", "Status", "Took", "Detail")
	for _, r := range results {
		detail, took := "", "-"
		if r.err != nil {
			detail = r.err.Error()
		}
		if r.state != checkSkipped {
			took = r.took.Round(time.Millisecond).String()
		}
		_ = table.Append(r.name, string(r.state), took, detail)
	}
	_ = table.Render()
}
