package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/in/grpc"
	grpcpool "github.com/JoeShih716/go-statement-ledger/pkg/grpc"
	"github.com/JoeShih716/go-statement-ledger/pkg/logger"
)

// connection 所有子命令共用的 gRPC 連線設定
type connection struct {
	addr    string
	timeout time.Duration
	verbose bool
	pool    *grpcpool.Pool
}

func (c *connection) bindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&c.addr, "addr", "a", "localhost:50051", "ledger gRPC address")
	cmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 5*time.Second, "per-request timeout")
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log every gRPC call")
}

func (c *connection) client() (*grpc_adapter.Client, error) {
	conn, err := c.conn()
	if err != nil {
		return nil, err
	}
	return grpc_adapter.NewClient(conn), nil
}

func (c *connection) conn() (*grpc.ClientConn, error) {
	if c.pool == nil {
		level := "warn"
		if c.verbose {
			level = "debug"
		}
		c.pool = grpcpool.NewPool(
			grpcpool.WithInterceptor(grpcpool.LoggingInterceptor(logger.New(level, "text", os.Stderr))),
		)
	}
	return c.pool.GetConnection(c.addr)
}

func (c *connection) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

func (c *connection) close() error {
	if c.pool == nil {
		return nil
	}
	if err := c.pool.Close(); err != nil {
		slog.Debug("close pool failed", "error", err)
	}
	return nil
}
