package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	colorGreen  = "\033[0;32m"
	colorRed    = "\033[0;31m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
	colorReset  = "\033[0m"
)

// commandTimeout bounds commands whose output devtool reads
const commandTimeout = 2 * time.Minute

// console writes devtool status lines. Color is off when NO_COLOR is set.
type console struct {
	out   io.Writer
	color bool
}

var term = newConsole(os.Stdout)

func newConsole(out io.Writer) *console {
	_, noColor := os.LookupEnv("NO_COLOR")
	return &console{out: out, color: !noColor}
}

func (c *console) line(color, mark, format string, a ...interface{}) {
	msg := mark + " " + fmt.Sprintf(format, a...)
	if c.color {
		msg = color + msg + colorReset
	}
	fmt.Fprintln(c.out, msg)
}

func PrintInfo(format string, a ...interface{}) {
	term.line(colorBlue, "ℹ", format, a...)
}

func PrintSuccess(format string, a ...interface{}) {
	term.line(colorGreen, "✓", format, a...)
}

func PrintWarning(format string, a ...interface{}) {
	term.line(colorYellow, "⚠", format, a...)
}

func PrintError(format string, a ...interface{}) {
	term.line(colorRed, "✗", format, a...)
}

func PrintHeader(title string) {
	fmt.Fprintln(term.out)
	term.line(colorYellow, "===", "%s ===", title)
}

var shellOperators = []string{"|", "`", "$(", "&&", "||", ">", "<"}

// checkHostile rejects arguments with line breaks, null bytes or shell operators.
// A lone '&' (URL query) or ';' (SQL) is allowed.
func checkHostile(inputs ...string) error {
	for _, s := range inputs {
		if strings.ContainsAny(s, "\n\r") {
			return fmt.Errorf("hostile input detected: newlines or carriage returns")
		}
		if strings.Contains(s, "\x00") {
			return fmt.Errorf("hostile input detected: null byte")
		}
		for _, op := range shellOperators {
			if strings.Contains(s, op) {
				return fmt.Errorf("hostile input detected: pattern %q in %q", op, s)
			}
		}
	}
	return nil
}

func newCommand(ctx context.Context, name string, args ...string) (*exec.Cmd, error) {
	if err := checkHostile(append([]string{name}, args...)...); err != nil {
		return nil, err
	}
	// #nosec G204 - arguments screened by checkHostile
	return exec.CommandContext(ctx, name, args...), nil
}

// getCommandOutput runs a command and returns its trimmed stdout
func getCommandOutput(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd, err := newCommand(ctx, name, args...)
	if err != nil {
		return "", err
	}
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// runCommand runs a command silently
func runCommand(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd, err := newCommand(ctx, name, args...)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// runCommandVerbose streams a command's output to the console. It has no timeout.
func runCommandVerbose(name string, args ...string) error {
	cmd, err := newCommand(context.Background(), name, args...)
	if err != nil {
		return err
	}
	cmd.Stdout = term.out
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
