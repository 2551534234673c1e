package cli

import (
	"context"
	"flag"

	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage"
)

type Command interface {
	SetFlags(fset *flag.FlagSet)
	Description() string
	Run(ctx context.Context, stor storage.Storage, conf *config.Config, logger *logger.Logger) error
}
