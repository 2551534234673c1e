package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/GustavoCaso/spendtrace/internal/cli"
	"github.com/GustavoCaso/spendtrace/internal/cli/category"
	"github.com/GustavoCaso/spendtrace/internal/cli/delete"
	"github.com/GustavoCaso/spendtrace/internal/cli/export"
	importCmd "github.com/GustavoCaso/spendtrace/internal/cli/import"
	"github.com/GustavoCaso/spendtrace/internal/cli/search"
	"github.com/GustavoCaso/spendtrace/internal/cli/serve"
	"github.com/GustavoCaso/spendtrace/internal/cli/summary"
	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/storage/sqlite"
)

var configPath string

var subcommands = map[string]cli.Command{
	"serve":    serve.NewCommand(),
	"category": category.NewCommand(),
	"delete":   delete.NewCommand(),
	"export":   export.NewCommand(),
	"import":   importCmd.NewCommand(),
	"search":   search.NewCommand(),
	"summary":  summary.NewCommand(),
}

var subcommandsFlagSets = map[string]*flag.FlagSet{}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("subcommand is required\n")
		printUsage()

		os.Exit(1)
	}

	for c, cLogic := range subcommands {
		fset := flag.NewFlagSet(c, flag.ExitOnError)
		fset.StringVar(&configPath, "c", "spendtrace.yaml", "Configuration file")

		cLogic.SetFlags(fset)

		subcommandsFlagSets[c] = fset
	}

	commandName := os.Args[1]
	command, ok := subcommands[commandName]
	if !ok {
		if strings.Contains(commandName, "help") {
			printHelp()

			os.Exit(0)
		}
		log.Fatalf("unsupported command %s. \nUse 'help' command to print information about supported commands\n", commandName)
	}

	if err := subcommandsFlagSets[commandName].Parse(os.Args[2:]); err != nil {
		log.Fatalf("Unable to parse flags: %s", err.Error())
	}

	if err := run(command, configPath); err != nil {
		log.Fatalf("%s failed: %s", commandName, err.Error())
	}
}

func run(command cli.Command, path string) error {
	conf, err := config.Parse(path)
	if err != nil {
		return fmt.Errorf("unable to parse the configuration: %w", err)
	}

	if err = conf.Validate(); err != nil {
		return err
	}

	appLogger := logger.New(conf.Logger)

	stor, err := sqlite.New(conf.DB)
	if err != nil {
		return fmt.Errorf("unable to open the database: %w", err)
	}
	defer func() {
		if closeErr := stor.Close(); closeErr != nil {
			appLogger.Error("Failed to close the database", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = stor.ApplyMigrations(ctx, appLogger); err != nil {
		return fmt.Errorf("unable to migrate the database: %w", err)
	}

	return command.Run(ctx, stor, conf, appLogger)
}

func printHelp() {
	printUsage()

	names := make([]string, 0, len(subcommands))
	for c := range subcommands {
		names = append(names, c)
	}
	slices.Sort(names)

	for _, c := range names {
		fmt.Printf("subcommand <%s>: %s\n", c, subcommands[c].Description())
		subcommandsFlagSets[c].PrintDefaults()
		fmt.Println()
		fmt.Println()
	}
}

func printUsage() {
	fmt.Printf("usage: spendtrace <subcommand> [flags]\n\n")
}
