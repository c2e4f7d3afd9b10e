package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/JoeShih716/go-statement-ledger/internal/app"
	grpc_adapter "github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/in/rest"
	"github.com/JoeShih716/go-statement-ledger/internal/config"
	"github.com/JoeShih716/go-statement-ledger/pkg/logger"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	var cfgFile string
	rootCmd := &cobra.Command{
		Use:           "core",
		Short:         "statement ledger server (gRPC + HTTP)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 沒有指定 --config 且預設檔不存在時，只用預設值 + 環境變數
			path := cfgFile
			if !cmd.Flags().Changed("config") {
				if _, err := os.Stat(path); err != nil {
					path = ""
				}
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", defaultConfigPath, "config file path")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 儲存層 / 帳戶鎖 / UseCase
	application, cleanup, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// 2. gRPC (內部 API)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}
	grpcServer := grpc.NewServer()
	grpc_adapter.RegisterLedgerServiceServer(grpcServer, grpc_adapter.NewGrpcServer(application.Ledger, application.Accounts))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer) // 方便 grpcurl 等工具查詢

	// 3. HTTP (對外 API)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := rest.NewHandler(application.Ledger, application.Accounts, log)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: rest.NewRouter(handler, []byte(cfg.Auth.JWTSecret), log),
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", "addr", cfg.Server.GRPCAddr)
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		log.Info("starting HTTP server", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful Shutdown
	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")
	case serveErr = <-errCh:
		log.Error("server stopped unexpectedly", "error", serveErr)
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	log.Info("server exited")
	return serveErr
}
