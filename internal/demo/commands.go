package demo

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxCommandTokens = 8

const usageText = `commands:
  help                      show this help
  demo seed                 capture a baseline from one real fetch
  demo on | off             enter or leave demo mode
  demo status               print demo state
  demo reset                rewind the working squad to the baseline
  demo squad                print the working squad
  gw live <0|1>             override the live flag
  gw current <n>            override the current gameweek
  gw next <n>               override the upcoming gameweek
  gw deadline in <seconds>  place the next deadline
  gw deadline clear         remove the deadline
  event <slot> <type> [n]   inject an event (goal, assist, cs, concede,
                            save, bonus, yc, rc, og, pen_save, pen_miss,
                            defcontrib, minutes)`

// Execute parses and runs one console line, writing feedback to w. Commands
// are case-insensitive; unknown input gets a diagnostic, never silence.
func (c *Controller) Execute(ctx context.Context, line string, w io.Writer) {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(tokens) == 0 {
		return
	}
	if len(tokens) > maxCommandTokens {
		fmt.Fprintln(w, "error: too many tokens")
		return
	}

	var err error
	switch tokens[0] {
	case "help":
		fmt.Fprintln(w, usageText)
	case "demo":
		err = c.runDemoCommand(ctx, tokens[1:], w)
	case "gw":
		err = c.runGWCommand(tokens[1:])
	case "event":
		err = c.runEventCommand(tokens[1:], w)
	default:
		err = fmt.Errorf("unknown command %q, try 'help'", tokens[0])
	}

	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}
}

func (c *Controller) runDemoCommand(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: demo <help|seed|on|off|status|reset|squad>")
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(w, usageText)
	case "seed":
		if err := c.Seed(ctx); err != nil {
			return err
		}
		fmt.Fprintln(w, "demo seeded")
	case "on":
		if err := c.On(); err != nil {
			return err
		}
		fmt.Fprintln(w, "demo on")
	case "off":
		c.Off()
		fmt.Fprintln(w, "demo off")
	case "status":
		fmt.Fprintln(w, c.StatusLine())
	case "reset":
		if err := c.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(w, "demo reset")
	case "squad":
		for _, line := range c.SquadLines() {
			fmt.Fprintln(w, line)
		}
	default:
		return fmt.Errorf("unknown demo subcommand %q", args[0])
	}
	return nil
}

func (c *Controller) runGWCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: gw <live|current|next|deadline> ...")
	}

	switch args[0] {
	case "live":
		switch args[1] {
		case "0":
			return c.SetLive(false)
		case "1":
			return c.SetLive(true)
		default:
			return fmt.Errorf("usage: gw live <0|1>")
		}
	case "current":
		gw, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("usage: gw current <n>")
		}
		return c.SetCurrentGW(gw)
	case "next":
		gw, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("usage: gw next <n>")
		}
		return c.SetNextGW(gw)
	case "deadline":
		switch {
		case args[1] == "clear":
			return c.DeadlineClear()
		case args[1] == "in" && len(args) == 3:
			seconds, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("usage: gw deadline in <seconds>")
			}
			return c.DeadlineIn(seconds)
		default:
			return fmt.Errorf("usage: gw deadline <in <seconds>|clear>")
		}
	default:
		return fmt.Errorf("unknown gw subcommand %q", args[0])
	}
}

func (c *Controller) runEventCommand(args []string, w io.Writer) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: event <slot> <type> [count]")
	}

	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 1 {
		return fmt.Errorf("slot must be a positive number")
	}
	kind, err := ParseEventKind(args[1])
	if err != nil {
		return err
	}

	count := 1
	if len(args) == 3 {
		count, err = strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("count must be a number")
		}
		if count == 0 {
			return fmt.Errorf("count must not be zero")
		}
		if count < 0 && kind != EventMinutes {
			return fmt.Errorf("negative count is only valid for minutes")
		}
	}

	if err := c.ApplyEvent(slot, kind, count); err != nil {
		return err
	}
	fmt.Fprintf(w, "event applied: slot %d %s x%d\n", slot, kind, count)
	return nil
}
