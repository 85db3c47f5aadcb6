package app

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	platformgrpc "github.com/louisbranch/charsheet/internal/platform/grpc"
	"github.com/louisbranch/charsheet/internal/services/sheet/domain"
	"github.com/louisbranch/charsheet/internal/services/sheet/remote"
)

func startTestServer(t *testing.T, healthAddr string) *Server {
	t.Helper()

	srv, err := NewServer(context.Background(), Config{
		HTTPAddr:   "127.0.0.1:0",
		HealthAddr: healthAddr,
		DBPath:     filepath.Join(t.TempDir(), "data", "charstore.db"),
		Logger:     log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return srv
}

func TestNewServerRequiresConfig(t *testing.T) {
	if _, err := NewServer(context.Background(), Config{DBPath: filepath.Join(t.TempDir(), "x.db")}); err == nil {
		t.Fatal("expected missing http address error")
	}
	if _, err := NewServer(context.Background(), Config{HTTPAddr: "127.0.0.1:0"}); err == nil {
		t.Fatal("expected missing storage path error")
	}
}

func TestNewServerRejectsBadRuleset(t *testing.T) {
	_, err := NewServer(context.Background(), Config{
		HTTPAddr:    "127.0.0.1:0",
		DBPath:      filepath.Join(t.TempDir(), "x.db"),
		RulesetPath: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	if err == nil {
		t.Fatal("expected ruleset error")
	}
}

func TestServerRoundTripWithRemoteClient(t *testing.T) {
	srv := startTestServer(t, "")
	if srv.HealthAddr() != "" {
		t.Fatalf("health addr = %q, want empty", srv.HealthAddr())
	}

	client, err := remote.New("http://"+srv.Addr()+"/character", remote.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	initial, err := client.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch initial: %v", err)
	}
	if diff := cmp.Diff(domain.DefaultRuleset().NewSheet().Document(), initial); diff != "" {
		t.Fatalf("initial document mismatch (-want +got):\n%s", diff)
	}

	doc := domain.DefaultRuleset().NewSheet().Adjust("Charisma", 4).Allocate("Persuasion", 3).Document()
	if err := client.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := client.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestServerReportsGRPCHealth(t *testing.T) {
	srv := startTestServer(t, "127.0.0.1:0")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := platformgrpc.CheckHealth(ctx, srv.HealthAddr(), HealthService, t.Logf); err != nil {
		t.Fatalf("check health: %v", err)
	}
}
