package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syscall"

	"github.com/ironsheep/asset-studio-mcp/internal/assets"
	"github.com/ironsheep/asset-studio-mcp/internal/config"
	"github.com/ironsheep/asset-studio-mcp/internal/export"
	"github.com/ironsheep/asset-studio-mcp/internal/httpapi"
	"github.com/ironsheep/asset-studio-mcp/internal/imaging"
	"github.com/ironsheep/asset-studio-mcp/internal/logger"
	"github.com/ironsheep/asset-studio-mcp/internal/metrics"
	"github.com/ironsheep/asset-studio-mcp/internal/server"
	"github.com/oklog/run"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("asset-studio-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	if err := runMain(); err != nil {
		fmt.Fprintf(os.Stderr, "asset-studio-mcp: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("asset-studio-mcp - MCP server for game asset post-processing")
	fmt.Println()
	fmt.Println("Usage: asset-studio-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  " + config.EnvLogLevel + "=info         debug, info, warn or error")
	fmt.Println("  " + config.EnvHTTPAddr + "=:8080        Also serve the HTTP API")
	fmt.Println("  " + config.EnvBatchWorkers + "=1        Parallel images in asset_trim_batch")
	fmt.Println("  " + config.EnvToleranceScale + "=2.5    Matting tolerance multiplier")
	fmt.Println("  " + config.EnvMinIslandArea + "=64      Default min_area of frame detection")
	fmt.Println("  " + config.EnvFetchTimeout + "=30s      Timeout of image URL downloads")
	fmt.Println("  " + config.EnvMaxFetchBytes + "=33554432 Size limit of downloads and uploads")
	fmt.Println("  " + config.EnvExportDir + "=exports     Export directory")
	fmt.Println("  " + config.EnvS3Bucket + "              Export to this S3 bucket instead")
	fmt.Println("  " + config.EnvS3Region + "=us-east-1")
	fmt.Println("  " + config.EnvS3Prefix + "              Key prefix inside the bucket")
	fmt.Println("  " + config.EnvNodeID + "=1              Asset ID generator node (0-1023)")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

func runMain() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config failed")
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	ctx := context.Background()

	store, err := assets.NewStore(cfg.NodeID)
	if err != nil {
		return err
	}
	sink, err := export.Open(ctx, export.Options{
		Dir:    cfg.ExportDir,
		Bucket: cfg.S3Bucket,
		Region: cfg.S3Region,
		Prefix: cfg.S3Prefix,
	})
	if err != nil {
		return errors.Wrap(err, "open export sink failed")
	}
	cache := imaging.NewImageCache(
		imaging.WithFetchTimeout(cfg.FetchTimeout),
		imaging.WithMaxFetchBytes(cfg.MaxFetchBytes),
	)
	m := metrics.New(metrics.NewRegistry())

	server.Version = Version
	srv := server.New(store,
		server.WithImageCache(cache),
		server.WithSink(sink),
		server.WithMetrics(m),
		server.WithLogger(log),
		server.WithBatchWorkers(cfg.BatchWorkers),
		server.WithToleranceScale(cfg.ToleranceScale),
		server.WithMinIslandArea(cfg.MinIslandArea),
	)

	g := new(run.Group)
	{
		stdioCtx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			err := srv.Run(stdioCtx, os.Stdin, os.Stdout)
			log.Info("stdio transport closed")
			return err
		}, func(error) {
			cancel()
			os.Stdin.Close()
		})
	}
	if cfg.HTTPAddr != "" {
		httpSrv := http.Server{
			Addr: cfg.HTTPAddr,
			Handler: httpapi.NewRouter(httpapi.Options{
				Logger:         log,
				Metrics:        m,
				ToleranceScale: cfg.ToleranceScale,
				MinIslandArea:  cfg.MinIslandArea,
				MaxBodyBytes:   cfg.MaxFetchBytes,
			}),
		}
		g.Add(func() error {
			log.Info("http transport listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}, func(error) {
			httpSrv.Close()
		})
	}
	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		log.Info("shutting down", zap.String("signal", sigErr.Signal.String()))
		return nil
	}
	return err
}
