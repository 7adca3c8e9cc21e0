package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/tartampluch/go-daytime/internal/config"
	"github.com/tartampluch/go-daytime/internal/day"
	"github.com/tartampluch/go-daytime/internal/engine"
	"github.com/tartampluch/go-daytime/internal/i18n"
	"github.com/tartampluch/go-daytime/internal/server"
)

// main delegates to runMain so that deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	serve := flag.Bool(config.FlagServe, false, config.FlagDescServe)
	lang := flag.String(config.FlagLang, "", config.FlagDescLang)
	only := flag.String(config.FlagDay, "", config.FlagDescDay)
	flag.Parse()

	if *showVersion {
		printVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Configuration (environment, then flags)
	// -------------------------------------------------------------------------
	settings, err := config.LoadSettings()
	if err == nil && *lang != "" {
		settings.Language = *lang
		err = settings.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}

	// -------------------------------------------------------------------------
	// 3. Logging Initialization
	// -------------------------------------------------------------------------
	// Only the server mode logs to stdout; the table printer keeps stdout clean.
	logCloser := setupLogging(*debugMode || settings.Debug, *serve)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	translator := i18n.NewTranslator(settings.Language)

	if *serve {
		err = run(ctx, settings, translator)
	} else {
		err = printTable(os.Stdout, translator, *only)
	}
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// printTable writes one line per period, or only the period named by only.
func printTable(w io.Writer, tr *i18n.Translator, only string) error {
	days := day.All()
	if only != "" {
		d, err := day.Parse(only)
		if err != nil {
			return err
		}
		days = []day.Day{d}
	}

	for _, d := range days {
		if _, err := fmt.Fprintf(w, config.FormatTableRow, d.Hour(), tr.Label(d), tr.Message(d)); err != nil {
			return err
		}
	}
	return nil
}

// run wires the generator and the server, then blocks until ctx is cancelled.
func run(ctx context.Context, settings *config.Settings, tr *i18n.Translator) error {
	gen := &engine.Generator{
		Clock:           engine.RealClock{},
		Translator:      tr,
		ReminderTrigger: settings.Reminder,
	}

	srv := server.NewGreetingServer(settings.Port)
	srv.RateLimit = settings.RateLimit

	if err := refresh(ctx, gen, srv); err != nil {
		return err
	}
	go refreshLoop(ctx, gen, srv, settings.RefreshInterval)

	return srv.Start(ctx)
}

// refreshLoop regenerates the feed so DTSTAMP and next occurrences stay current.
func refreshLoop(ctx context.Context, gen *engine.Generator, srv *server.GreetingServer, interval time.Duration) {
	log := slog.With(config.LogKeyComponent, config.CompRefresh)
	log.Info(config.MsgRefreshStart, config.LogKeyInterval, interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgRefreshStop)
			return
		case <-ticker.C:
			if err := refresh(ctx, gen, srv); err != nil && ctx.Err() == nil {
				log.Error(config.ErrFeedGeneration, config.LogKeyError, err)
			}
		}
	}
}

func refresh(ctx context.Context, gen *engine.Generator, srv *server.GreetingServer) error {
	ics, entries, err := gen.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedGeneration, err)
	}
	srv.Update(ics)
	srv.UpdateEntries(entries)
	return nil
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyDate, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
// Records go to the log file in the user cache dir, and to stdout when toStdout is set.
func setupLogging(debugMode, toStdout bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	if toStdout {
		writers = append(writers, os.Stdout)
	}

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
