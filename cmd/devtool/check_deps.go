package main

import (
	"fmt"
	"strings"
)

type CheckDepsCommand struct{}

func (c *CheckDepsCommand) Name() string {
	return "check-deps"
}

func (c *CheckDepsCommand) Description() string {
	return "Check for required dependencies"
}

// dependency describes one tool and how to pull a version out of its output
type dependency struct {
	name     string
	cmd      []string
	field    int // whitespace field holding the version, -1 for the last
	required bool
	install  string
}

var dependencies = []dependency{
	{name: "Go", cmd: []string{"go", "version"}, field: 2, required: true, install: "https://go.dev/dl/"},
	{name: "Docker", cmd: []string{"docker", "--version"}, field: 2, required: true, install: "https://docs.docker.com/get-docker/"},
	{name: "Docker Compose", cmd: []string{"docker", "compose", "version"}, field: 3, install: "bundled with recent Docker releases"},
	{name: "Make", cmd: []string{"make", "--version"}, field: 2, install: "sudo apt install make"},
	{name: "Redis CLI", cmd: []string{"redis-cli", "--version"}, field: 1, install: "only needed with REDIS_ADDR"},
}

func (c *CheckDepsCommand) Run(args []string) error {
	PrintHeader("Checking dependencies...")

	var missing []string
	for _, dep := range dependencies {
		out, err := getCommandOutput(dep.cmd[0], dep.cmd[1:]...)
		if err != nil {
			if dep.required {
				PrintError("%s not found! Install: %s", dep.name, dep.install)
				missing = append(missing, dep.name)
			} else {
				PrintWarning("%s not found (optional, %s)", dep.name, dep.install)
			}
			continue
		}
		PrintSuccess("%s installed: %s", dep.name, versionField(out, dep.field))
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	PrintSuccess("Environment check complete!")
	return nil
}

// versionField picks a field from the first line of a --version output
func versionField(out string, field int) string {
	line, _, _ := strings.Cut(out, "\n")
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return out
	}
	if field < 0 || field >= len(parts) {
		field = len(parts) - 1
	}
	v := strings.TrimRight(parts[field], ",")
	return strings.TrimPrefix(v, "version:")
}
