package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external process invocation.
type Command struct {
	Dir  string
	Name string
	Args []string
	Env  []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, c Command) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w", c, err)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w: %s", c, err, msg)
	}
	return stdout.Bytes(), nil
}
