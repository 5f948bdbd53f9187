package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xuanlung-gov/tthc-assistant/internal/app"
	"github.com/xuanlung-gov/tthc-assistant/internal/assistant"
	"github.com/xuanlung-gov/tthc-assistant/internal/buildinfo"
	"github.com/xuanlung-gov/tthc-assistant/internal/config"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/warmup"
)

// answerer is the part of *assistant.Service the command needs.
type answerer interface {
	Answer(ctx context.Context, raw string) (*assistant.Answer, error)
}

// buildFunc creates the answerer and a cleanup function.
type buildFunc func(ctx context.Context, opts options) (answerer, func(), error)

type options struct {
	mode     string
	asJSON   bool
	preload  bool
	logLevel string
	stderr   io.Writer
}

// result is the --json output.
type result struct {
	Reply   string `json:"reply"`
	Label   string `json:"label"`
	Route   string `json:"route"`
	Outcome string `json:"outcome"`
	Matched string `json:"matched,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newRootCmd(build buildFunc) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one citizen question with the configured feeds and generator",
		Long: `Answer one question through the same pipeline as POST /api/chat.

The question may start with a mode tag such as "[CHẾ ĐỘ: THỦ TỤC]";
--mode adds one for you. Configuration is read from the environment
and .env, exactly like the server.`,
		Example: `  ask --mode "THỦ TỤC" đăng ký khai sinh
  ask "[CHẾ ĐỘ: CHUNG] quy chế làm việc của UBND xã"
  ask --json --preload lịch tiếp công dân`,
		Version:       buildinfo.Get().Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.stderr = cmd.ErrOrStderr()
			question := withMode(opts.mode, strings.Join(args, " "))

			a, cleanup, err := build(cmd.Context(), opts)
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}
			defer cleanup()

			return ask(cmd.Context(), a, question, opts.asJSON, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", `mode label to prepend, e.g. "THỦ TỤC"`)
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the answer with its route and outcome as JSON")
	cmd.Flags().BoolVar(&opts.preload, "preload", false, "download both feeds before answering and report their size")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	return cmd
}

// withMode prepends a mode tag unless the question already carries one.
func withMode(mode, question string) string {
	question = strings.TrimSpace(question)
	mode = strings.TrimSpace(mode)
	if mode == "" || strings.HasPrefix(question, "[") {
		return question
	}
	return fmt.Sprintf("[CHẾ ĐỘ: %s] %s", mode, question)
}

func ask(ctx context.Context, a answerer, question string, asJSON bool, out io.Writer) error {
	ans, err := a.Answer(ctx, question)
	if ans == nil {
		return err
	}

	if !asJSON {
		_, _ = fmt.Fprintln(out, ans.Reply)
		return err
	}

	res := result{
		Reply:   ans.Reply,
		Label:   ans.Label,
		Route:   string(ans.Route),
		Outcome: string(ans.Outcome),
		Matched: ans.Matched,
	}
	if err != nil {
		res.Error = err.Error()
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(res); encErr != nil {
		return encErr
	}
	return err
}

// buildAnswerer wires the real pipeline from the environment.
func buildAnswerer(ctx context.Context, opts options) (answerer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	stderr := opts.stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	log := logger.NewWithWriter(opts.logLevel, stderr)

	c, err := app.BuildComponents(ctx, cfg, log, nil)
	if err != nil {
		return nil, nil, err
	}

	if opts.preload {
		results, _ := warmup.Preload(ctx, warmup.Options{Logger: log}, c.Procedures, c.Documents)
		for _, r := range results {
			line := fmt.Sprintf("%s: %s, %d records", r.Feed, r.Status, r.Records)
			if r.Err != nil {
				line += " (" + r.Err.Error() + ")"
			}
			_, _ = fmt.Fprintln(stderr, line)
		}
	}

	return c.Assistant, func() { _ = c.Close() }, nil
}
