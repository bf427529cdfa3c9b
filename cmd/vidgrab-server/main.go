package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/vidgrab/api"
	"github.com/yourusername/vidgrab/api/handlers"
	"github.com/yourusername/vidgrab/internal/app"
	"github.com/yourusername/vidgrab/internal/infrastructure"
	"github.com/yourusername/vidgrab/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

var (
	serverMode = flag.Bool("server-mode", false, "Run the server in the foreground (used by the daemon)")
	configPath = flag.String("config", "", "Config file path")
)

func main() {
	flag.Parse()

	if !*serverMode {
		startAsDaemon()
		return
	}

	if err := runServer(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// startAsDaemon re-executes this binary in server mode, detached from the
// terminal, and exits
func startAsDaemon() {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	args := []string{"--server-mode"}
	if *configPath != "" {
		args = append(args, "--config", *configPath)
	}

	cmd := exec.Command(execPath, args...)
	cmd.Dir = cwd
	cmd.Env = os.Environ()
	detach(cmd)

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", os.DevNull, err)
		os.Exit(1)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server started as daemon (PID: %d)\n", cmd.Process.Pid)
	os.Exit(0)
}

func runServer() error {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	general, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Defaults.LogsDir,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize category logs: %w", err)
	}

	logAdapter := logger.NewLoggerAdapter(multiLog, general)
	defer logAdapter.Close()
	log := logAdapter.General()

	log.Info("Starting vidgrab server",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("ytdlp", config.Tool.YTDLPBinary),
		zap.String("output_dir", config.Defaults.OutputDir),
		zap.String("logs_dir", config.Defaults.LogsDir))

	// Runs are only kept for the lifetime of the process
	repo, err := infrastructure.NewSQLiteRunRepository(infrastructure.MemoryDSN("vidgrab-" + uuid.NewString()))
	if err != nil {
		logAdapter.LogAppError("Failed to initialize repository", zap.Error(err))
		return err
	}
	defer repo.Close()

	prober := infrastructure.NewDependencyProber(
		config.Tool.YTDLPBinary,
		config.Tool.FFmpegBinary,
		config.Tool.AcceleratorBinary,
		config.Tool.ProbeTimeout,
		log,
	)
	logDependencies(log, prober)

	notifier := infrastructure.NewNotificationService(&config.Notification, log)
	runMgr := app.NewRunManager(config, repo, notifier, prober, log, logAdapter.Session())

	router := api.SetupRouter(api.RouterDeps{
		RunManager: runMgr,
		Info:       infrastructure.NewInfoFetcher(config.Tool.YTDLPBinary, config.Tool.InfoTimeout, log),
		Deps:       prober,
		LogAdapter: logAdapter,
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		logAdapter.LogAppError("HTTP server failed", zap.Error(err))
		return err
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := runMgr.Shutdown(shutdownCtx); err != nil {
		logAdapter.LogAppError("Active run did not stop in time", zap.Error(err))
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logAdapter.LogAppError("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

// logDependencies reports missing tools once at startup
func logDependencies(log *zap.Logger, prober *infrastructure.DependencyProber) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	report := prober.Probe(ctx)
	for _, tool := range report.Tools() {
		if tool.Available {
			log.Info("Found tool", zap.String("tool", tool.Name), zap.String("version", tool.Version))
			continue
		}
		log.Warn("Tool not available", zap.String("tool", tool.Name), zap.String("error", tool.Error))
	}
	if !report.Downloader.Available {
		log.Error("yt-dlp is missing, every run will fail to launch")
	}
}
