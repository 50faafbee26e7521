package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/notes-summarizer/internal/ingest"
	"github.com/joseph-ayodele/notes-summarizer/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP and gRPC APIs, plus the inbox watcher when INBOX_DIR is set",
	RunE:  doServe,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "summarize note files dropped into a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doWatch,
}

func doServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.NewRouter(server.NewHTTPHandler(a.jobs, a.exports, logger, cfg.Jobs.Timeout)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcSrv := server.NewGRPCServer(a.jobs, logger, cfg.Jobs.Timeout)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http.serving", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("grpc.serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	if cfg.Inbox.Dir != "" {
		g.Go(func() error { return newInbox(a, cfg.Inbox.Dir).Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func doWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir := cfg.Inbox.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("inbox directory required: pass it as an argument or set INBOX_DIR")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return newInbox(a, dir).Run(ctx)
}

func newInbox(a *app, dir string) *ingest.Inbox {
	return ingest.NewInbox(ingest.InboxConfig{
		Dir:      dir,
		Debounce: cfg.Inbox.Debounce,
		Workers:  cfg.Inbox.Workers,
		Timeout:  cfg.Jobs.Timeout + cfg.Cleaner.Timeout,
	}, a.jobs, logger)
}
