// Package main is the entry point for Treeify.
package main

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ALiangTech/treeify/internal/clipboard"
	"github.com/ALiangTech/treeify/internal/config"
	mfs "github.com/ALiangTech/treeify/internal/fs"
	"github.com/ALiangTech/treeify/internal/handler"
	"github.com/ALiangTech/treeify/internal/logging"
	"github.com/ALiangTech/treeify/internal/metrics"
	"github.com/ALiangTech/treeify/internal/session"
	"github.com/ALiangTech/treeify/internal/tree"
	"github.com/ALiangTech/treeify/internal/walker"
	"github.com/ALiangTech/treeify/internal/watcher"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed web/*
var webFS embed.FS

// rebuildDelay lets a burst of file events settle before the folder is read again.
const rebuildDelay = 200 * time.Millisecond

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "treeify: %v\n", err)
		os.Exit(2)
	}

	if err := logging.Init(cfg.Logging()); err != nil {
		fmt.Fprintf(os.Stderr, "treeify: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logging.Sync() }()

	switch cfg.Command {
	case config.CommandPrint:
		err = printTree(cfg, os.Stdout, os.Stderr, clipboard.NewService())
	default:
		err = serve(cfg)
	}
	if err != nil {
		logging.L().Error("treeify failed", zap.Error(err))
		_ = logging.Sync()
		os.Exit(1)
	}
}

// folderFS reads path from the working tree, or from cfg.GitRef when one is set.
func folderFS(cfg *config.Config, path string) mfs.FileSystem {
	if cfg.GitRef != "" {
		return mfs.NewGitFS(path, cfg.GitRef)
	}
	return mfs.NewLocalFS(path)
}

// printTree renders the folders named on the command line to out.
func printTree(cfg *config.Config, out, errOut io.Writer, copier clipboard.Copier) error {
	var records []tree.Record
	for _, path := range cfg.Paths() {
		found, err := walker.Walk(folderFS(cfg, path), "", cfg.WalkOptions())
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		records = append(records, found...)
	}

	forest, stats := tree.BuildWithStats(records, cfg.TreeOptions())
	logging.L().Debug("tree built",
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped()),
		zap.Int("roots", len(forest)),
	)

	var text string
	if cfg.All {
		text = tree.FormatAll(forest, nil)
	} else {
		text = tree.Format(forest, nil)
	}
	if _, err := io.WriteString(out, text); err != nil {
		return err
	}

	if cfg.Copy && clipboard.TryCopy(copier, text, logging.L()) {
		fmt.Fprintln(errOut, "Copied to clipboard")
	}
	return nil
}

func serve(cfg *config.Config) error {
	logger := logging.L()
	logger.Info("Treeify - folder tree builder",
		zap.String("config", cfg.GetConfigFilePath()),
		zap.Int("port", cfg.Port),
	)

	// Create handlers
	store := session.NewStore(cfg.MaxSessions)
	wsHandler := handler.NewWSHandler()
	treeHandler := handler.NewTreeHandler(cfg, store, wsHandler)
	exportHandler := handler.NewExportHandler(store)

	if cfg.Path != "" {
		fsys := folderFS(cfg, cfg.Path)
		snap, err := treeHandler.LoadFolder(fsys)
		if err != nil {
			return fmt.Errorf("load %s: %w", cfg.Path, err)
		}
		metrics.SetSessionsActive(store.Len())
		logger.Info("local folder loaded",
			zap.String("path", cfg.Path),
			zap.String("git_ref", cfg.GitRef),
			zap.String("session", snap.ID),
		)

		// Setup file watcher if enabled
		if cfg.Watch && cfg.GitRef == "" {
			w, err := watcher.New(cfg)
			if err != nil {
				logger.Warn("failed to create file watcher", zap.Error(err))
			} else {
				rebuild := watcher.Debounce(rebuildDelay, func() {
					if _, err := treeHandler.LoadFolder(fsys); err != nil {
						logger.Warn("failed to rebuild local folder", zap.Error(err))
					}
				})
				w.OnChange(wsHandler.OnFileChange)
				w.OnChange(rebuild.Trigger)
				if err := w.Start(); err != nil {
					logger.Warn("failed to start file watcher", zap.Error(err))
				} else {
					// Deferred calls run in reverse: events stop first, then the pending rebuild.
					defer rebuild.Stop()
					defer func() { _ = w.Stop() }()
					logger.Info("file watcher enabled")
				}
			}
		}
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware())
	r.Use(metrics.Middleware())
	r.Use(corsMiddleware())

	handler.Register(r.Group("/api"), treeHandler, exportHandler, wsHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Serve embedded static files
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("load web assets: %w", err)
	}
	r.NoRoute(gin.WrapH(http.FileServer(http.FS(webContent))))

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	// Open browser if requested
	if cfg.Open {
		go openBrowser(url)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		_ = httpServer.Close()
	}()

	logger.Info("server listening", zap.String("url", url))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default: // linux, etc.
		cmd = "xdg-open"
		args = []string{url}
	}

	_ = exec.Command(cmd, args...).Start()
}
