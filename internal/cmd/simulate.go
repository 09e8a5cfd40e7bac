package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/debounce"
	"github.com/offlinefirst/debounce/pkg/trace"
)

func newSimulateCommand(rc *RootCommand) command {
	return command{
		name:        "simulate",
		description: "Replay a JSONL trace of button transitions and print each verdict",
		configure: func(fs *flag.FlagSet) {
			fs.Uint("delay", uint(control.DefaultDelay), "Debounce delay in milliseconds")
			fs.String("policy", "", "Decision policy (cross-check, independent, release-guard); default from config")
			fs.String("format", "text", "Output format (text, json)")
		},
		run: func(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
			return runSimulate(fs, args, ctx, rc.stdin, stdout)
		},
	}
}

func runSimulate(fs *flag.FlagSet, args []string, ctx *AppContext, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("application context unavailable")
	}

	delay, err := uintFlag(fs, "delay")
	if err != nil {
		return err
	}
	policyName := stringFlag(fs, "policy")
	if policyName == "" {
		policyName = ctx.Config.Debounce.Policy
	}
	policy, err := debounce.ParsePolicy(policyName)
	if err != nil {
		return err
	}
	format := strings.ToLower(stringFlag(fs, "format"))
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported output format %q", format)
	}

	input := stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open trace: %w", err)
		}
		defer f.Close()
		input = f
	}

	engine := debounce.New(debounce.Options{Threshold: delay, Policy: policy})
	summary, err := trace.Replay(context.Background(), engine, trace.NewReader(input), func(o trace.Outcome) error {
		if format == "json" {
			line, err := trace.Encode(o)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout, "%s\n", line)
			return err
		}
		_, err := fmt.Fprintf(stdout, "%d %s %s %s\n", o.Event.Timestamp, o.Event.Channel, o.Event.Kind, o.Verdict)
		return err
	})
	if err != nil {
		return err
	}

	ctx.Logger.Info("trace replayed",
		"delay_ms", delay,
		"policy", policy.Name(),
		"events", summary.Events,
		"passed", summary.Passed,
		"suppressed", summary.Suppressed,
	)
	return nil
}
