// Package deploy runs the redeploy commands triggered by the push webhook.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-todo-web/internal/logger"
)

// ErrNoCommands is returned by New when there is nothing to run.
var ErrNoCommands = errors.New("deploy: no commands configured")

const defaultTimeout = time.Minute

// Hook runs a fixed list of commands in a working directory.
type Hook struct {
	commands [][]string
	dir      string
	timeout  time.Duration
}

// Opt configures a Hook.
type Opt func(*Hook)

// WithDir sets the working directory of the commands.
func WithDir(dir string) Opt {
	return func(h *Hook) {
		h.dir = dir
	}
}

// WithTimeout bounds the total run time of all commands.
func WithTimeout(timeout time.Duration) Opt {
	return func(h *Hook) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// New parses a ";"-separated command line such as
// "git pull; chmod a+x server" into a Hook.
func New(commandLine string, opts ...Opt) (*Hook, error) {
	h := &Hook{timeout: defaultTimeout}
	for _, part := range strings.Split(commandLine, ";") {
		if fields := strings.Fields(part); len(fields) > 0 {
			h.commands = append(h.commands, fields)
		}
	}
	if len(h.commands) == 0 {
		return nil, ErrNoCommands
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Run executes the commands in order and returns their combined output.
// It stops at the first failing command.
func (h *Hook) Run(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var out bytes.Buffer
	for _, args := range h.commands {
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = h.dir
		cmd.Stdout = &out
		cmd.Stderr = &out

		err := cmd.Run()
		logger.Log.Infow("deploy command",
			"command", strings.Join(args, " "),
			"dir", h.dir,
			"error", err,
		)
		if err != nil {
			return out.Bytes(), fmt.Errorf("run %q: %w", args[0], err)
		}
	}
	return out.Bytes(), nil
}
