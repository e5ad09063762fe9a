package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/prasrvenkat/crontrigger"
	"github.com/prasrvenkat/crontrigger/internal/render"
)

type CLI struct {
	LogConfig logConfig `embed:"" prefix:"log-"`

	Translate translateCmd `cmd:"" help:"Translate a cron expression into scheduler triggers."`
	Next      nextCmd      `cmd:"" help:"Preview the next fire times of a cron expression."`
}

type logConfig struct {
	Level string `help:"Log level." default:"warn" enum:"trace,debug,info,warn,error" env:"CRONTRIGGER_LOG_LEVEL"`
	JSON  bool   `help:"Log in JSON format." env:"CRONTRIGGER_LOG_JSON"`
}

func (c logConfig) configure(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := w
	if !c.JSON {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// ClockFlags pick the date triggers are created on.
type ClockFlags struct {
	Date time.Time `help:"Creation date (YYYY-MM-DD) instead of today." format:"2006-01-02"`
	TZ   string    `name:"tz" help:"Time zone triggers are created in." default:"Local"`
}

func (c ClockFlags) clock() (clock.Clock, error) {
	if c.Date.IsZero() && c.TZ == "Local" {
		return clock.New(), nil
	}
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz: %w", err)
	}
	now := time.Now().In(loc)
	if !c.Date.IsZero() {
		now = time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), 0, 0, 0, 0, loc)
	}
	mock := clock.NewMock()
	mock.Set(now)
	return mock, nil
}

type translateCmd struct {
	ClockFlags `embed:""`
	Format     string   `short:"f" help:"Output format (${enum})." enum:"text,json,yaml,cbor" default:"text"`
	Expression []string `arg:"" help:"Cron expression, quoted or as five separate arguments."`
}

func (c *translateCmd) Run(log zerolog.Logger, stdout io.Writer) error {
	clk, err := c.clock()
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	input := strings.Join(c.Expression, " ")
	triggers, err := crontrigger.NewTranslator(clk, log).CreateTriggers(input)
	if err != nil {
		return err
	}
	log.Info().Str("expression", input).Int("triggers", len(triggers)).Msg("Translated")
	return render.Write(stdout, format, triggers)
}

type nextCmd struct {
	ClockFlags `embed:""`
	Count      int      `short:"n" help:"Number of fire times to print." default:"5"`
	Expression []string `arg:"" help:"Cron expression, quoted or as five separate arguments."`
}

func (c *nextCmd) Run(log zerolog.Logger, stdout io.Writer) error {
	if c.Count < 1 {
		return fmt.Errorf("--count must be positive, got %d", c.Count)
	}
	clk, err := c.clock()
	if err != nil {
		return err
	}
	input := strings.Join(c.Expression, " ")
	triggers, err := crontrigger.NewTranslator(clk, log).CreateTriggers(input)
	if err != nil {
		return err
	}

	printed := 0
	for at := range crontrigger.Occurrences(triggers, clk.Now()) {
		fmt.Fprintln(stdout, at.Format(time.RFC3339))
		printed++
		if printed >= c.Count {
			break
		}
	}
	if printed == 0 {
		log.Warn().Str("expression", input).Msg("Expression never fires")
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("crontrigger"),
		kong.Description("Translate cron expressions into calendar triggers."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	logger, err := cli.LogConfig.configure(stderr)
	if err != nil {
		return err
	}
	kctx.BindTo(stdout, (*io.Writer)(nil))
	return kctx.Run(logger)
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	var cerr *crontrigger.CronError
	if errors.As(err, &cerr) {
		fmt.Fprintln(os.Stderr, cerr.DisplayRich())
	} else {
		fmt.Fprintf(os.Stderr, "crontrigger: error: %s\n", err)
	}
	os.Exit(1)
}
