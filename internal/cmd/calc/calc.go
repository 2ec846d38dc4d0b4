// Package calc runs the terminal keypad: each input line is a sequence of
// keys applied to one in-process calculator session.
package calc

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/louisbranch/tally/internal/core/calc"
	"github.com/louisbranch/tally/internal/keypad"
	entrypoint "github.com/louisbranch/tally/internal/platform/cmd"
	apperrors "github.com/louisbranch/tally/internal/platform/errors"
	"github.com/louisbranch/tally/internal/session"
)

const helpText = `keys are separated by spaces; runs of digits may be typed together:
  12.5 * 4 Enter     digits, ".", "+", "-", "*", "/", "%", "=" or Enter
  F9                 toggle sign
  Backspace          delete the last digit
  Escape (or c)      clear
commands:
  :history           list completed calculations, newest first
  :restore <n|id>    put a history result on the display
  :history-clear     remove every history entry
  :help              show this help
  :quit              exit`

// Config holds terminal keypad configuration.
type Config struct {
	HistoryCapacity int  `env:"TALLY_CALC_HISTORY_CAPACITY" envDefault:"50"`
	Quiet           bool `env:"TALLY_CALC_QUIET"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.HistoryCapacity, "history", cfg.HistoryCapacity, "History entries to keep")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Suppress the prompt and banner")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the keypad on stdin/stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCalc, func(ctx context.Context) error {
		return RunIO(ctx, cfg, os.Stdin, os.Stdout)
	})
}

// RunIO reads lines from in until EOF, ":quit" or ctx ends, writing the
// display after each line to out.
func RunIO(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var opts []session.Option
	if cfg.HistoryCapacity > 0 {
		opts = append(opts, session.WithHistoryCapacity(cfg.HistoryCapacity))
	}
	r := &repl{session: session.New(opts...), out: out, quiet: cfg.Quiet}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	if !r.quiet {
		fmt.Fprintln(out, "tally calculator; :help for keys, :quit to exit")
	}
	r.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			if quit := r.handle(ctx, line); quit {
				return nil
			}
			r.prompt()
		}
	}
}

type repl struct {
	session *session.Session
	out     io.Writer
	quiet   bool
}

func (r *repl) prompt() {
	if !r.quiet {
		fmt.Fprint(r.out, "> ")
	}
}

// handle runs one input line and reports whether the loop should stop.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		r.printSnapshot(r.session.Snapshot())
		return false
	}
	if !strings.HasPrefix(line, ":") {
		snap, err := keypad.Press(ctx, r.session, keypad.Split(line)...)
		if err != nil {
			r.printError(err)
			return false
		}
		r.printSnapshot(snap)
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(r.out, helpText)
	case ":history":
		r.printHistory()
	case ":history-clear":
		r.printSnapshot(r.session.ClearHistory(ctx))
	case ":restore":
		r.restore(ctx, arg)
	default:
		fmt.Fprintf(r.out, "unknown command %q; :help lists commands\n", command)
	}
	return false
}

func (r *repl) restore(ctx context.Context, arg string) {
	if arg == "" {
		r.printError(apperrors.New(apperrors.CodeHistoryEntryIDEmpty, "restore needs an entry"))
		return
	}
	entryID := arg
	if n, err := strconv.Atoi(arg); err == nil {
		entries := r.session.History()
		if n >= 1 && n <= len(entries) {
			entryID = entries[n-1].ID
		}
	}
	snap, err := r.session.RestoreFromHistory(ctx, entryID)
	if err != nil {
		r.printError(err)
		return
	}
	r.printSnapshot(snap)
}

func (r *repl) printHistory() {
	entries := r.session.History()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "(no history)")
		return
	}
	for i, entry := range entries {
		fmt.Fprintf(r.out, "%2d. %s = %s\n", i+1, entry.Expression, entry.Result)
	}
}

func (r *repl) printSnapshot(snap session.Snapshot) {
	if snap.Pending != calc.OperatorNone {
		fmt.Fprintf(r.out, "%s %s\n", snap.Text, snap.Pending.Symbol())
		return
	}
	fmt.Fprintln(r.out, snap.Text)
}

func (r *repl) printError(err error) {
	code := apperrors.GetCode(err)
	fmt.Fprintf(r.out, "error: %s\n", apperrors.UserMessage(code, apperrors.GetMetadata(err)))
}
