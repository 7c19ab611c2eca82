package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/epilectrik/voynich-sub007/pkg/trace"
	"github.com/epilectrik/voynich-sub007/pkg/trace/config"
	"github.com/epilectrik/voynich-sub007/pkg/trace/maintenance"
	"github.com/epilectrik/voynich-sub007/pkg/trace/report"
	"github.com/epilectrik/voynich-sub007/pkg/trace/store"
	"github.com/epilectrik/voynich-sub007/pkg/trace/store/sqlite"
	"github.com/epilectrik/voynich-sub007/pkg/trace/transcript"
)

func main() {
	var (
		transcriptPath = flag.String("transcript", "", "Path to transcription file (required)")
		folioID        = flag.String("folio", "f105v", "Folio identifier")
		configPath     = flag.String("config", "", "Optional: pipeline config YAML (defaults built in)")
		dbPath         = flag.String("db", "", "Optional: SQLite database for run persistence")
		outPath        = flag.String("out", "", "Report output path (stdout when empty)")
		keep           = flag.Int("keep", 0, "Optional: prune persisted runs down to the newest N per folio")
	)
	flag.Parse()

	if *transcriptPath == "" {
		log.Fatal("--transcript required")
	}

	ctx := context.Background()

	loader := config.Loader{ConfigPath: *configPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	folio, err := transcript.ParseFile(*folioID, *transcriptPath)
	if err != nil {
		log.Fatalf("parse transcript: %v", err)
	}

	var st store.Store
	if *dbPath != "" {
		st, err = sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
	}

	tracer := trace.New(trace.Options{
		Store:    st,
		Lexicon:  components.Lexicon,
		Classify: components.Classify,
		Hazard:   components.Hazard,
	})
	defer tracer.Close()

	tr, err := tracer.Run(ctx, folio)
	if err != nil {
		log.Fatalf("run pipeline: %v", err)
	}

	out := os.Stdout
	if *outPath != "" {
		out, err = os.Create(*outPath)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		defer out.Close()
	}
	if err := report.Render(out, tr); err != nil {
		log.Fatalf("render report: %v", err)
	}

	if st != nil && *keep > 0 {
		cleaner := maintenance.Cleaner{Store: st, KeepLatest: *keep}
		res, err := cleaner.Clean(ctx)
		if err != nil {
			log.Fatalf("prune runs: %v", err)
		}
		if res.Deleted > 0 {
			log.Printf("pruned %d old runs", res.Deleted)
		}
	}

	log.Printf("run %s: %d tokens, %d hazards, %d cycles",
		tr.RunID, tr.Summary.TotalTokens, tr.Summary.HazardTokens, tr.Summary.CycleCount)
}
