package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/epilectrik/voynich-sub007/pkg/trace/report"
)

func main() {
	var (
		reportPath = flag.String("report", "", "Path to rendered control-trace report (required)")
		strict     = flag.Bool("strict", false, "Also require run/folio metadata to be present")
	)
	flag.Parse()

	if *reportPath == "" {
		log.Fatal("--report required")
	}

	f, err := os.Open(*reportPath)
	if err != nil {
		log.Fatalf("open report: %v", err)
	}
	defer f.Close()

	rep, err := report.Parse(f)
	if err != nil {
		log.Fatalf("parse report: %v", err)
	}

	failed := false
	if *strict {
		if rep.RunID == "" {
			fmt.Println("missing run id")
			failed = true
		}
		if rep.FolioID == "" {
			fmt.Println("missing folio id")
			failed = true
		}
	}

	mismatches := report.Verify(rep)
	for _, m := range mismatches {
		fmt.Println(m)
	}
	if len(mismatches) > 0 || failed {
		os.Exit(1)
	}

	fmt.Printf("%s: %d rows, summary consistent\n", rep.FolioID, len(rep.Rows))
}
