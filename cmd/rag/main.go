package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ragqa/internal/app"
	"ragqa/internal/config"
	"ragqa/internal/domain"
	"ragqa/internal/loader"
	"ragqa/internal/logging"
	"ragqa/internal/pipeline"
	"ragqa/internal/server"
	"ragqa/internal/service"
	"ragqa/internal/summarizer"
	"ragqa/internal/tui"
	"ragqa/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath   string
		indexPath string
		savePath  string
		watchDir  string
		serve     bool
		plain     bool
		export    bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragqa/config.yaml if not provided)")
	flag.StringVar(&indexPath, "index", "", "Load a saved index instead of starting empty")
	flag.StringVar(&savePath, "save", "", "Save the index to this path after indexing (defaults to index.path)")
	flag.StringVar(&watchDir, "watch", "", "Watch a directory and index new files as they appear")
	flag.BoolVar(&serve, "serve", false, "Serve the HTTP API instead of the TUI")
	flag.BoolVar(&plain, "plain", false, "Use a plain Q/A prompt instead of the TUI")
	flag.BoolVar(&export, "export", false, "Copy the index to the configured export sink")
	flag.Parse()
	inputs := flag.Args()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if indexPath == "" && len(inputs) == 0 && watchDir == "" && !serve {
		fmt.Println("Usage: rag [--config=config.yaml] [--index=index.gob] [--serve|--plain] [--watch=dir] [--export] path ...")
		os.Exit(1)
	}
	if savePath == "" {
		savePath = cfg.Index.Path
	}

	tuiMode := !serve && !plain
	var logger *slog.Logger
	if tuiMode {
		logger = logging.Discard()
	} else if logger, err = logging.New(os.Stderr, cfg.Log); err != nil {
		log.Fatalf("logging: %v", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	emb, err := app.NewEmbedder(ctx, cfg.Embedder)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}
	gen, err := app.NewGenerator(ctx, cfg.Generator)
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}
	p, err := pipeline.New(pipeline.Config{
		MaxChunkSize: cfg.Chunker.MaxChunkSize,
		Overlap:      cfg.Chunker.Overlap,
		Metric:       vectorstore.Metric(cfg.Index.Metric),
		Boundaries:   cfg.Chunker.Boundaries,
		Concurrency:  cfg.Retrieval.Concurrency,
		Template:     cfg.Answer.Template,
	}, emb, gen, pipeline.WithLogger(logger), pipeline.WithProgress(func(doc string, done, total int) {
		logger.Info("indexing progress", "document", doc, "done", done, "total", total)
	}))
	if err != nil {
		log.Fatalf("pipeline init failed: %v", err)
	}

	idx, err := openIndex(indexPath, cfg, emb)
	if err != nil {
		log.Fatalf("index: %v", err)
	}

	svc := service.NewRAGService(p, idx, cfg.Retrieval.TopK, cfg.Retrieval.Budget)
	var docs []domain.Document
	if len(inputs) > 0 {
		if docs, err = loader.Load(inputs); err != nil {
			log.Fatalf("load documents: %v", err)
		}
		report, err := svc.AddDocuments(ctx, docs)
		var be *pipeline.BuildError
		switch {
		case errors.As(err, &be):
			log.Printf("indexing stopped at %s (%v); continuing with %d indexed documents", be.Document, be.Err, len(be.Succeeded))
		case err != nil:
			log.Fatalf("indexing failed: %v", err)
		default:
			logger.Info("indexing complete", "documents", len(report.Documents), "chunks", report.Chunks)
		}
	}
	svc.SetSummary(summarizer.New().SummarizeDocuments(docs, 3))

	if savePath != "" {
		if err := idx.Save(savePath); err != nil {
			log.Fatalf("save index: %v", err)
		}
		logger.Info("index saved", "path", savePath, "chunks", idx.Len())
	}

	if export {
		if err := exportIndex(ctx, cfg.Export, idx, logger); err != nil {
			log.Fatalf("export: %v", err)
		}
	}

	if watchDir != "" {
		go watch(ctx, watchDir, svc, savePath, logger)
	}

	switch {
	case serve:
		if err := server.New(svc, logger).Run(ctx, cfg.Server.Addr); err != nil {
			log.Fatalf("server: %v", err)
		}
	case plain:
		if err := runPlain(ctx, svc, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("plain loop: %v", err)
		}
	default:
		m := tui.New(svc, cfg.Retrieval.TopK)
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			log.Fatal(err)
		}
	}
}

func openIndex(path string, cfg *config.AppConfig, emb domain.Embedder) (*vectorstore.Index, error) {
	if path == "" {
		return vectorstore.New(vectorstore.Metric(cfg.Index.Metric), emb.Dimension())
	}
	idx, err := vectorstore.Load(path)
	if err != nil {
		return nil, err
	}
	if d := emb.Dimension(); d != 0 && idx.Dimension() != 0 && d != idx.Dimension() {
		return nil, domain.DimensionMismatch("open index "+path, idx.Dimension(), d)
	}
	return idx, nil
}

func exportIndex(ctx context.Context, cfg config.ExportConfig, idx *vectorstore.Index, logger *slog.Logger) error {
	sink, closeSink, err := app.NewSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()
	n, err := vectorstore.Export(ctx, idx, sink, cfg.BatchSize)
	if err != nil {
		return err
	}
	logger.Info("index exported", "sink", sink.Name(), "chunks", n)
	return nil
}

func watch(ctx context.Context, dir string, svc *service.RAGService, savePath string, logger *slog.Logger) {
	known := svc.Index().DocumentIDs()
	err := loader.Watch(ctx, dir, func(doc domain.Document) error {
		if _, err := svc.AddDocuments(ctx, []domain.Document{doc}); err != nil {
			return err
		}
		if savePath != "" {
			return svc.Index().Save(savePath)
		}
		return nil
	}, loader.WithKnown(known...), loader.WithLogger(logger))
	if err != nil {
		logger.Error("watcher stopped", "dir", dir, "error", err)
	}
}
