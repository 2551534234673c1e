package cli

import (
	"context"
	"errors"
	"flag"
	"testing"

	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
)

// mockCommand implements the Command interface for testing.
type mockCommand struct {
	description string
	runError    error
}

func (c mockCommand) SetFlags(fs *flag.FlagSet) {
	fs.String("test", "", "test flag")
}

func (c mockCommand) Description() string {
	return c.description
}

func (c mockCommand) Run(_ context.Context, _ storage.Storage, _ *config.Config, _ *logger.Logger) error {
	return c.runError
}

func TestCommandInterface(t *testing.T) {
	var cmd Command = mockCommand{description: "Test command"}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(fs)
	if fs.Lookup("test") == nil {
		t.Error("SetFlags() did not register the test flag")
	}

	if desc := cmd.Description(); desc != "Test command" {
		t.Errorf("Description() = %v, want %v", desc, "Test command")
	}

	if err := cmd.Run(context.Background(), nil, nil, nil); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}

	wantErr := errors.New("test error")
	cmd = mockCommand{description: "Error command", runError: wantErr}

	if err := cmd.Run(context.Background(), nil, nil, nil); !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}
