package main

// Run one analysis from the command line:
//   go run ./cmd/prompttest -resume cv.pdf -jd job.txt

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-roaster/internal/analysis"
	"resume-roaster/internal/extract"
	"resume-roaster/internal/llm"
	"resume-roaster/internal/llm/gemini"
	"resume-roaster/internal/llm/openai"
	"resume-roaster/internal/shared/config"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume file (txt, md, json, pdf or docx)")
	jdPath := flag.String("jd", "", "Path to job description file")
	outPath := flag.String("out", "", "Path to write the JSON result (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider (gemini or openai)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" || strings.TrimSpace(*jdPath) == "" {
		exitErr("both -resume and -jd are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.LLMTimeoutSec)*time.Second)
	defer cancel()

	resumeBytes, err := os.ReadFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}
	resumeText, err := extract.FromBytes(ctx, resumeBytes, filepath.Base(*resumePath), "")
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}

	jdBytes, err := os.ReadFile(*jdPath)
	if err != nil {
		exitErr(fmt.Sprintf("read job description: %v", err))
	}

	cfg.LLMProvider = *provider
	client, err := buildClient(ctx, cfg, *model)
	if err != nil {
		exitErr(err.Error())
	}

	result, err := analysis.New(client, *provider, *model).Analyze(ctx, resumeText, string(jdBytes))
	if err != nil {
		exitErr(fmt.Sprintf("%s: %v", analysis.Code(err), err))
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	if strings.TrimSpace(*outPath) != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	fmt.Println(string(pretty))
}

func buildClient(ctx context.Context, cfg config.Config, model string) (llm.Client, error) {
	key := cfg.APIKey()
	if strings.TrimSpace(key) == "" {
		return nil, nil
	}
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(key, model, openai.Options{})
	case "gemini":
		return gemini.NewClient(ctx, key, model, gemini.Options{})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.LLMProvider)
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
