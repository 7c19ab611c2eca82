// Package archive fetches folio transcriptions from an interlinear archive
// site. Archive pages embed the transcription as preformatted text; this
// package pulls out the locus lines for one folio so the pipeline can run
// without a local transcription file.
package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
)

// Client downloads transcription pages.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

// FetchFolio downloads the archive page for a folio and extracts its
// transcription lines.
func (c *Client) FetchFolio(ctx context.Context, folioID string) (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("archive base url empty: %w", internalerr.ErrInvalidInput)
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/" + folioID + ".html"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	return ExtractTranscription(resp.Body, folioID)
}

// ExtractTranscription pulls the transcription lines for folioID out of an
// archive HTML page. Lines live in <pre> blocks; only locus lines for the
// requested folio and comment lines are kept.
func ExtractTranscription(r io.Reader, folioID string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse archive page: %w", err)
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "pre" {
			blocks = append(blocks, textContent(n))
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	var lines []string
	for _, block := range blocks {
		for _, line := range strings.Split(block, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") || belongsTo(trimmed, folioID) {
				lines = append(lines, trimmed)
			}
		}
	}

	if !hasLocusLine(lines) {
		return "", fmt.Errorf("folio %s: no transcription lines found: %w", folioID, internalerr.ErrNotFound)
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func belongsTo(line, folioID string) bool {
	return strings.HasPrefix(line, "<"+folioID+".") || strings.HasPrefix(line, "<"+folioID+">")
}

func hasLocusLine(lines []string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, "<") {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
