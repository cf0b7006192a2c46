// Command neighbors loads a word-embedding model and prints the nearest
// neighbors of each query word.
//
//	neighbors [flags] [query ...]
//
// Settings come from defaults, an optional YAML file, .env and NEIGHBORS_*
// variables; flags and positional queries override them. Logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DanielSebasCM/research-stay-2024/config"
	"github.com/DanielSebasCM/research-stay-2024/embedding"
	"github.com/DanielSebasCM/research-stay-2024/index"
	"github.com/DanielSebasCM/research-stay-2024/internal/logging"
	"github.com/DanielSebasCM/research-stay-2024/provider"
	"github.com/DanielSebasCM/research-stay-2024/report"
	"github.com/DanielSebasCM/research-stay-2024/space"
	"github.com/DanielSebasCM/research-stay-2024/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("neighbors", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (default $NEIGHBORS_CONFIG)")
	modelName := fs.String("model", "", "dataset name, model file or sqlite:<path>")
	topK := fs.Int("k", config.DefaultTopK, "neighbors per query")
	indexKind := fs.String("index", "", "index kind: auto, brute or cover")
	limit := fs.Int("limit", 0, "read at most this many terms (0 = all)")
	exportPath := fs.String("export-sqlite", "", "also write the loaded vocabulary to this SQLite file")
	sqlQuery := fs.String("sql", "", "run this SELECT against the neighbors table instead of the report")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	// only flags given on the command line override the loaded config
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model = *modelName
		case "k":
			cfg.TopK = *topK
		case "index":
			cfg.Index = *indexKind
		case "limit":
			cfg.Limit = *limit
		}
	})
	if fs.NArg() > 0 {
		cfg.Queries = fs.Args()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	log, err := logging.New(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := execute(ctx, cfg, *exportPath, *sqlQuery, stdout, log); err != nil {
		log.Error("neighbors failed", "err", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, cfg *config.Config, exportPath, sqlQuery string, stdout io.Writer, log *slog.Logger) error {
	kind, _ := index.ParseKind(cfg.Index)
	p := provider.New(
		provider.WithDir(cfg.ModelDir),
		provider.WithDownloadURL(cfg.DownloadURL),
		provider.WithLimit(cfg.Limit),
		provider.WithIndex(kind),
		provider.WithLogger(log),
	)
	sp, err := p.Load(ctx, cfg.Model)
	if err != nil {
		return err
	}
	if c, ok := sp.(io.Closer); ok {
		defer c.Close()
	}
	if exportPath != "" {
		if err := export(ctx, sp, exportPath, log); err != nil {
			return err
		}
	}
	if sqlQuery != "" {
		return runSQL(ctx, sp, cfg.TopK, sqlQuery, stdout)
	}
	return report.New(stdout).Report(sp, cfg.Queries, cfg.TopK)
}

// export copies an in-memory vocabulary into a SQLite store that later runs
// can load as sqlite:<path>.
func export(ctx context.Context, sp embedding.Space, path string, log *slog.Logger) error {
	mem, ok := sp.(*space.Space)
	if !ok {
		return errors.New("export: only file-backed models can be exported")
	}
	st, err := store.Create(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	terms := mem.Terms()
	vectors := make([][]float32, len(terms))
	for n, term := range terms {
		if vectors[n], err = mem.VectorOf(term); err != nil {
			return err
		}
	}
	added, err := st.Import(ctx, terms, vectors)
	if err != nil {
		return err
	}
	log.Info("exported vocabulary", "path", path, "terms", added)
	return nil
}
