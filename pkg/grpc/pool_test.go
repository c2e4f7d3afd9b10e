package grpc

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestPoolReusesConnection(t *testing.T) {
	p := NewPool()
	a, err := p.GetConnection("localhost:1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.GetConnection("localhost:1")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("expected the same connection")
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	c, err := p.GetConnection("localhost:1")
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if c == a {
		t.Fatal("closed connection was reused")
	}
}

func TestLoggingInterceptor(t *testing.T) {
	lis := bufconn.Listen(1 << 16)
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, health.NewServer())
	go s.Serve(lis)
	defer s.Stop()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewPool(WithInterceptor(LoggingInterceptor(logger)))
	defer p.Close()

	conn, err := p.GetConnection("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !strings.Contains(buf.String(), "/grpc.health.v1.Health/Check") || !strings.Contains(buf.String(), "code=OK") {
		t.Fatalf("log output %q", buf.String())
	}
}
