// Command datalens interprets arbitrary text values and explores every
// conversion reachable from them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/DataLens/core/engine"
	"github.com/FocuswithJustin/DataLens/internal/api"
	"github.com/FocuswithJustin/DataLens/internal/formats"
	"github.com/FocuswithJustin/DataLens/internal/formats/currency"
	"github.com/FocuswithJustin/DataLens/internal/logging"
	"github.com/FocuswithJustin/DataLens/internal/rates"
)

const version = "0.4.0"

// CLI defines the command-line interface for datalens.
var CLI struct {
	// Global flags
	Config  string        `help:"Path to a JSON config with blocking and priority overrides" type:"path"`
	Timeout time.Duration `help:"Per-request conversion timeout" default:"10s"`
	RatesDB string        `name:"rates-db" help:"Exchange rate cache database (default: user cache dir)" type:"path"`
	Offline bool          `help:"Disable exchange rate fetching; currency amounts parse but do not convert"`
	Verbose bool          `short:"v" help:"Enable debug logging"`

	Convert ConvertCmd `cmd:"" help:"Interpret a value and list every reachable conversion"`
	Formats FormatsCmd `cmd:"" help:"List available format providers"`
	Serve   ServeCmd   `cmd:"" help:"Start the REST and WebSocket server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// buildEngine assembles the registry and engine from the global flags.
// The returned cleanup releases the rate store when one was opened.
func buildEngine() (*engine.Engine, func(), error) {
	cfg := engine.DefaultConfig()
	if CLI.Config != "" {
		data, err := os.ReadFile(CLI.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
		cfg, err = engine.LoadConfig(data)
		if err != nil {
			return nil, nil, fmt.Errorf("parse config: %w", err)
		}
	}

	var rateSource currency.RateSource
	cleanup := func() {}
	if !CLI.Offline {
		store, err := rates.Open(ratesPath(), rates.Options{})
		if err != nil {
			// Rates are an enrichment; the engine works without them.
			logging.Warn("rate store unavailable", "error", err)
		} else {
			rateSource = store
			cleanup = func() { store.Close() }
		}
	}

	reg := formats.NewRegistry(formats.Options{Rates: rateSource})
	return engine.New(reg, cfg), cleanup, nil
}

func ratesPath() string {
	if CLI.RatesDB != "" {
		return CLI.RatesDB
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "datalens-rates.db"
	}
	return filepath.Join(dir, "datalens", "rates.db")
}

// ConvertCmd interprets input and prints each interpretation with its
// conversions.
type ConvertCmd struct {
	Input   string   `arg:"" help:"Value to interpret (hex, base64, timestamp, expression, ...)"`
	JSON    bool     `help:"Emit JSON instead of text"`
	Formats []string `short:"f" help:"Restrict interpretation to these formats (IDs or aliases)"`
}

func (c *ConvertCmd) Run() error {
	eng, cleanup, err := buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	if CLI.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, CLI.Timeout)
		defer cancel()
	}

	results := eng.ConvertAllFiltered(ctx, c.Input, c.Formats)
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("no interpretations")
		return nil
	}
	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		interp := res.Interpretation
		fmt.Printf("%s  [%s, confidence %.2f]\n", interp.Description, interp.SourceFormat, interp.Confidence)
		for _, conv := range res.Conversions {
			display := conv.Display
			if idx := strings.IndexByte(display, '\n'); idx >= 0 {
				display = display[:idx] + " ..."
			}
			fmt.Printf("  %-16s %s", conv.TargetFormat, display)
			if len(conv.Path) > 2 {
				fmt.Printf("  (via %s)", strings.Join(conv.Path[1:len(conv.Path)-1], " -> "))
			}
			fmt.Println()
		}
	}
	return nil
}

// FormatsCmd lists the registered providers.
type FormatsCmd struct {
	JSON bool `help:"Emit JSON instead of text"`
}

func (c *FormatsCmd) Run() error {
	eng, cleanup, err := buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	infos := eng.Registry().Infos()
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	for _, info := range infos {
		aliases := ""
		if len(info.Aliases) > 0 {
			aliases = " (" + strings.Join(info.Aliases, ", ") + ")"
		}
		fmt.Printf("%-14s %-12s %s%s\n", info.ID, info.Category, info.Description, aliases)
	}
	return nil
}

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Port int `help:"HTTP server port" default:"8080"`
}

func (c *ServeCmd) Run() error {
	if !CLI.Verbose {
		logging.InitLogger(logging.LevelInfo, logging.FormatText)
	}
	eng, cleanup, err := buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	srv := api.NewServer(eng, api.Config{
		Port:           c.Port,
		RequestTimeout: CLI.Timeout,
	})
	return srv.Start()
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("datalens version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("datalens"),
		kong.Description("DataLens - interpret any value and see everything it could be"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if CLI.Verbose {
		logging.InitLogger(logging.LevelDebug, logging.FormatText)
	}
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
