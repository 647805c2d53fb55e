package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"calprint/internal/config"
	"calprint/internal/emit"
	appLog "calprint/internal/log"
	"calprint/internal/pipeline"
	"calprint/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	from       string
	months     int
	outDir     string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// CLI overrides.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.months > 0 {
		conf.Months = flags.months
	}
	if flags.outDir != "" {
		conf.OutputDir = flags.outDir
	}

	appLog.Info("calprint starting",
		"version", version,
		"paper_size", conf.PaperSize,
		"orientation", conf.Orientation,
		"week_start", conf.WeekStart,
		"months", conf.Months,
		"source_count", len(conf.Sources),
		"once", flags.once,
	)

	from := time.Now()
	if flags.from != "" {
		t, perr := time.Parse("2006-01", flags.from)
		if perr != nil {
			appLog.Error("invalid -from value, want YYYY-MM", perr, "from", flags.from)
			os.Exit(1)
		}
		from = t
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if err := runOnce(ctx, conf, from); err != nil {
			os.Exit(1)
		}
		return
	}

	// Serve mode: cron-driven regeneration plus the HTTP API.
	gen := pipeline.New(conf)
	regenerate := func() {
		res, err := gen.Generate(ctx, time.Now(), conf.Months)
		if err != nil {
			appLog.Error("scheduled generation failed", err)
			return
		}
		path, err := emit.Save(conf.OutputDir, res.Filename, res.Blob)
		if err != nil {
			appLog.Error("failed to write document", err, "dir", conf.OutputDir)
			return
		}
		appLog.Info("document written", "path", path, "bytes", len(res.Blob))
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, regenerate); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	go func() {
		if err := web.StartServer(ctx, conf, flags.configPath); err != nil {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()
	// Give in-flight handlers a moment to drain.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("calprint exiting")
}

// runOnce generates a single document and writes it to the output dir.
func runOnce(ctx context.Context, conf *config.Config, from time.Time) error {
	res, err := pipeline.New(conf).Generate(ctx, from, conf.Months)
	if err != nil {
		appLog.Error("generation failed", err)
		return err
	}
	path, err := emit.Save(conf.OutputDir, res.Filename, res.Blob)
	if err != nil {
		appLog.Error("failed to write document", err, "dir", conf.OutputDir)
		return err
	}
	appLog.Info("document written", "path", path, "bytes", len(res.Blob))
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/calprint/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Generate one document and exit")
	flag.StringVar(&cfg.from, "from", "", "First month to render as YYYY-MM (default: current month)")
	flag.IntVar(&cfg.months, "months", 0, "Number of months per document (overrides config if > 0)")
	flag.StringVar(&cfg.outDir, "out", "", "Output directory (overrides config if set)")

	flag.Parse()
	return cfg
}
