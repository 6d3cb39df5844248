package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"

	"symgen/internal/config"
	"symgen/internal/storage"
)

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "mutate":
		return runMutate(ctx, args[1:])
	case "crossover":
		return runCrossover(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "list":
		return runList(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	case "operators":
		return runOperators(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

const memoryStoreNote = "note: the memory store does not persist between invocations; use -store sqlite (build with -tags sqlite) or exchange programs with -in/-out"

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: symgenctl <init|generate|mutate|crossover|show|list|delete|lineage|operators> [flags]\n%s", msg, memoryStoreNote)
}

// commonFlags are accepted by every command that touches configuration or
// the store. Unset flags fall back to the loaded config.
type commonFlags struct {
	fs        *flag.FlagSet
	config    *string
	storeKind *string
	dbPath    *string
	logLevel  *string
	seed      *int64
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		fs:        fs,
		config:    fs.String("config", "", "config file (yaml or json)"),
		storeKind: fs.String("store", "", "store backend: memory|sqlite"),
		dbPath:    fs.String("db-path", "", "sqlite database path"),
		logLevel:  fs.String("log-level", "", "log level: debug|info|warn|error"),
		seed:      fs.Int64("seed", 0, "random seed"),
	}
}

func (c *commonFlags) set(name string) bool {
	found := false
	c.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// env is what a command works with once flags and config are resolved.
type env struct {
	cfg    config.Config
	store  storage.Store
	logger *slog.Logger
	rng    *rand.Rand
}

func (c *commonFlags) open(ctx context.Context) (*env, error) {
	cfg, err := config.Load(*c.config)
	if err != nil {
		return nil, err
	}
	if c.set("store") {
		cfg.Store.Kind = *c.storeKind
	}
	if c.set("db-path") {
		cfg.Store.Path = *c.dbPath
	}
	if c.set("log-level") {
		cfg.LogLevel = *c.logLevel
	}
	if c.set("seed") {
		cfg.Seed = *c.seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := storage.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	logger.Debug("store opened", slog.String("kind", cfg.Store.Kind), slog.String("path", cfg.Store.Path))

	return &env{
		cfg:    cfg,
		store:  store,
		logger: logger,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (e *env) close() {
	if err := storage.CloseIfSupported(e.store); err != nil {
		e.logger.Warn("close store", slog.String("error", err.Error()))
	}
}

var errMissingID = errors.New("program id is required")
