package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CommandConverter runs an external conversion tool once per attempt. Its
// output streams are appended to a log file.
type CommandConverter struct {
	argv    []string
	timeout time.Duration
	logPath string
}

// NewCommandConverter creates a converter for argv. The placeholders
// {input}, {output}, {schema} and {timestamp_format} are substituted per job.
func NewCommandConverter(argv []string, timeout time.Duration, logPath string) *CommandConverter {
	return &CommandConverter{argv: argv, timeout: timeout, logPath: logPath}
}

// Convert runs the tool for job and waits at most the configured timeout.
func (c *CommandConverter) Convert(ctx context.Context, job Job) error {
	if len(c.argv) == 0 {
		return errors.New("converter command is empty")
	}

	args := c.expand(job)

	logf, err := os.OpenFile(c.logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open convert log: %w", err)
	}
	defer logf.Close()
	fmt.Fprintf(logf, "%s [%s] %s\n", time.Now().UTC().Format(time.RFC3339), job.Kind, strings.Join(args, " "))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = logf
	cmd.Stderr = logf
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("converter timed out after %s", c.timeout)
		}
		return fmt.Errorf("converter failed: %w", err)
	}
	return nil
}

func (c *CommandConverter) expand(job Job) []string {
	r := strings.NewReplacer(
		"{input}", job.Input,
		"{output}", job.Output,
		"{schema}", job.Schema,
		"{timestamp_format}", job.TimestampFormat,
	)
	args := make([]string, len(c.argv))
	for i, a := range c.argv {
		args[i] = r.Replace(a)
	}
	return args
}
