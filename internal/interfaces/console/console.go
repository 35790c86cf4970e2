// Package console reads line commands from an input stream and dispatches
// them to the demo controller. In production this sits on stdin; tests feed
// it a buffer.
package console

import (
	"bufio"
	"context"
	"io"

	"github.com/fplbuddy/scoreboard/internal/platform/logging"
)

// Executor runs one command line and writes feedback to w.
type Executor interface {
	Execute(ctx context.Context, line string, w io.Writer)
}

type Console struct {
	in       io.Reader
	out      io.Writer
	executor Executor
	logger   *logging.Logger
}

func New(in io.Reader, out io.Writer, executor Executor, logger *logging.Logger) *Console {
	if logger == nil {
		logger = logging.Default()
	}
	return &Console{in: in, out: out, executor: executor, logger: logger}
}

// Run consumes lines until EOF or context cancellation. Scanner errors end
// the loop; an interactive session losing stdin has nothing left to do.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.executor.Execute(ctx, scanner.Text(), c.out)
	}

	if err := scanner.Err(); err != nil {
		c.logger.WarnContext(ctx, "console input closed", "error", err)
		return err
	}
	return nil
}
