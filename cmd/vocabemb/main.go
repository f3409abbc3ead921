package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"vocabemb/internal/config"
	"vocabemb/internal/domain"
	"vocabemb/internal/embedding"
	"vocabemb/internal/report"
	"vocabemb/internal/service"
	"vocabemb/internal/tui"
	"vocabemb/internal/vectorstore"
	"vocabemb/internal/vectorstore/memory"
	"vocabemb/internal/vectorstore/npz"
	"vocabemb/internal/vocab"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath  string
		vocabArg string
		outArg   string
		provider string
		dryRun   bool
		noTUI    bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/vocabemb/config.yaml if not provided)")
	flag.StringVar(&vocabArg, "vocab", "", "Vocabulary file (.pickle, .txt, .json, .yaml); default words.pickle")
	flag.StringVar(&outArg, "out", "", "Output .npz path; default vocab_embeddings_<provider>.npz")
	flag.StringVar(&provider, "provider", "", "Embedding provider: lexical or contextual")
	flag.BoolVar(&dryRun, "dry-run", false, "Build the matrix without writing it")
	flag.BoolVar(&noTUI, "no-tui", false, "Print plain progress lines instead of the progress bar")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vocabemb [flags]")
		fmt.Fprintln(os.Stderr, "       vocabemb inspect file.npz")
		flag.PrintDefaults()
	}
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		if args[0] != "inspect" || len(args) != 2 {
			flag.Usage()
			os.Exit(1)
		}
		if err := inspect(args[1]); err != nil {
			log.Fatalf("inspect failed: %v", err)
		}
		return
	}

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
	if vocabArg != "" {
		cfg.Vocab.Path = vocabArg
	}
	if outArg != "" {
		cfg.Output.Path = outArg
	}
	if provider != "" {
		cfg.Provider.Type = provider
	}
	config.ApplyDefaults(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := vocab.Load(cfg.Vocab.Path)
	if err != nil {
		log.Fatal(err)
	}

	emb, degraded, err := embedding.New(ctx, cfg.Provider)
	if err != nil {
		log.Fatal(err)
	}
	var warnings []string
	if degraded != nil {
		warnings = append(warnings, degraded.Error())
	}

	fallback, err := service.FallbackByName(cfg.Build.Fallback)
	if err != nil {
		log.Fatalf("invalid build config: %v", err)
	}
	policy := service.NewReservedPolicy(cfg.Build.ReservedTokens, fallback)
	opts := service.Options{ProgressEvery: cfg.Build.ProgressEvery, Workers: cfg.Build.Workers}

	var st vectorstore.Storage
	output := ""
	if dryRun {
		st = memory.NewStorage()
	} else {
		output = cfg.OutputPath()
		st = npz.NewStorage(output)
	}

	if !noTUI && isatty.IsTerminal(os.Stdout.Fd()) {
		runWithTUI(ctx, v, emb, policy, opts, st, output, warnings)
		return
	}

	for _, w := range warnings {
		log.Println(report.Warning(w))
	}
	log.Printf("vocabulary: %d tokens from %s", v.Len(), cfg.Vocab.Path)
	builder := service.NewMatrixBuilder(emb, policy, report.NewLogReporter(nil), opts)
	stats, err := builder.Export(ctx, v, st)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	fmt.Println(report.Summarize(stats, output))
}

func runWithTUI(ctx context.Context, v *vocab.Vocabulary, emb domain.Provider, policy *service.ReservedPolicy,
	opts service.Options, st vectorstore.Storage, output string, warnings []string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.New(emb.Name(), warnings).OnInterrupt(cancel)
	p := tea.NewProgram(m)
	builder := service.NewMatrixBuilder(emb, policy, tui.NewReporter(p), opts)

	result := make(chan buildResult, 1)
	go func() {
		stats, err := builder.Export(ctx, v, st)
		p.Send(tui.DoneMsg{Stats: stats, Output: output, Err: err})
		result <- buildResult{stats: stats, err: err}
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		log.Fatal(err)
	}
	fm, _ := final.(tui.Model)
	summary, err := tuiOutcome(fm.Interrupted(), <-result, output)
	if err != nil {
		log.Fatal(err)
	}
	if summary != "" {
		fmt.Println(summary)
	}
}

type buildResult struct {
	stats *domain.BuildStats
	err   error
}

// tuiOutcome decides how a TUI run ends once the build goroutine has returned.
// A quit key only counts as an interruption if the build actually stopped; a build
// that already saved its archive is reported as done.
func tuiOutcome(interrupted bool, res buildResult, output string) (string, error) {
	if res.err != nil {
		if interrupted {
			return "", errors.New("interrupted")
		}
		return "", res.err
	}
	if interrupted {
		return report.Summarize(res.stats, output), nil
	}
	return "", nil
}

func inspect(path string) error {
	keys, err := npz.Keys(path)
	if err != nil {
		return err
	}
	for _, key := range keys {
		m, err := npz.Load(path, key)
		if err != nil {
			return err
		}
		fmt.Printf("%s: float32 [%d, %d]\n", key, m.Rows, m.Cols)
	}
	return nil
}
