package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/epilectrik/voynich-sub007/internal/archive"
)

func main() {
	var (
		folioID = flag.String("folio", "f105v", "Folio identifier")
		baseURL = flag.String("url", "", "Archive base URL (required)")
		outPath = flag.String("out", "", "Output path (stdout when empty)")
	)
	flag.Parse()

	if *baseURL == "" {
		log.Fatal("--url required")
	}

	client := &archive.Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    *baseURL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	text, err := client.FetchFolio(ctx, *folioID)
	if err != nil {
		log.Fatalf("fetch folio %s: %v", *folioID, err)
	}

	if *outPath == "" {
		os.Stdout.WriteString(text)
		return
	}
	if err := os.WriteFile(*outPath, []byte(text), 0644); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("wrote %s transcription to %s", *folioID, *outPath)
}
