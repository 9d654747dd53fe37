package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joelkehle/ideascope/internal/client"
	"github.com/joelkehle/ideascope/internal/config"
	"github.com/joelkehle/ideascope/internal/feasibility"
)

func main() {
	idea := flag.String("idea", "", "Business idea text (reads stdin when empty)")
	format := flag.String("format", "markdown", "Output format: markdown, html or json")
	configPath := flag.String("config", "", "Optional YAML config with mode coefficients and extractor defaults")
	outputPath := flag.String("output", "", "Path to write the report (defaults to stdout)")
	server := flag.String("server", "", "Submit to a running ideascope API instead of scoring locally")
	wait := flag.Duration("wait", 60*time.Second, "With -server, how long to wait for narratives (0 skips)")
	flag.Parse()

	text := *idea
	if strings.TrimSpace(text) == "" {
		blob, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("read stdin: %v", err)
		}
		text = string(blob)
	}
	if strings.TrimSpace(text) == "" {
		log.Fatal("missing idea: pass -idea or pipe text on stdin")
	}

	var report feasibility.FeasibilityReport
	if *server != "" {
		r, err := remoteReport(*server, text, *wait)
		if err != nil {
			log.Fatalf("remote report: %v", err)
		}
		report = r
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		analyzer := feasibility.NewAnalyzer(feasibility.NewExtractor(cfg.Extractor), cfg.Modes)
		report = analyzer.Analyze(text)
	}

	out, err := render(report, *format)
	if err != nil {
		log.Fatalf("render report: %v", err)
	}
	if *outputPath == "" {
		fmt.Print(out)
		return
	}
	if err := os.WriteFile(*outputPath, []byte(out), 0o644); err != nil {
		log.Fatalf("write output: %v", err)
	}
}

// remoteReport submits the idea and, when wait > 0, polls until narratives land
// or the wait expires. A timed-out wait still returns the scored report.
func remoteReport(baseURL, text string, wait time.Duration) (feasibility.FeasibilityReport, error) {
	c := client.New(baseURL)
	ctx := context.Background()
	report, err := c.SubmitIdea(ctx, text)
	if err != nil || wait <= 0 {
		return report, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	done, err := c.WaitForNarratives(waitCtx, report.ID, time.Second)
	if err != nil {
		log.Printf("narratives incomplete: %v", err)
		if done.ID == "" {
			return report, nil
		}
	}
	return done, nil
}

func render(report feasibility.FeasibilityReport, format string) (string, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return feasibility.BuildMarkdown(report), nil
	case "html":
		return feasibility.RenderHTML(feasibility.BuildMarkdown(report))
	case "json":
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
