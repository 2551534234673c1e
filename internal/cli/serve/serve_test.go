package serve

import (
	"context"
	"flag"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/GustavoCaso/spendtrace/internal/testutil"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	if cmd == nil {
		t.Fatal("NewCommand() returned nil")
	}

	if desc := cmd.Description(); desc != "Serves the REST API" {
		t.Errorf("Description() = %v, want %v", desc, "Serves the REST API")
	}
}

func TestSetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	NewCommand().SetFlags(fs)

	for _, name := range []string{"p", "t"} {
		if fs.Lookup(name) == nil {
			t.Errorf("%s flag not registered", name)
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	logger := testutil.TestLogger(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, server, listener, time.Second, logger)
	}()

	resp, err := http.Get("http://" + listener.Addr().String())
	if err != nil {
		t.Fatalf("Failed to reach server: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204; got %v", resp.StatusCode)
	}

	cancel()

	select {
	case err = <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
