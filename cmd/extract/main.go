// Command extract prints the recipes published at the given URLs.
//
//	extract [-format json|yaml] [-parallel N] [-plain] url...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/baxromumarov/recipe-hunter/internal/config"
	"github.com/baxromumarov/recipe-hunter/internal/content"
	"github.com/baxromumarov/recipe-hunter/internal/core"
	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/store"
)

func main() {
	cfg := config.Load()

	format := flag.String("format", "json", "Output format: json or yaml")
	parallel := flag.Int("parallel", cfg.ImportParallelism, "Number of pages fetched at once")
	plain := flag.Bool("plain", false, "Strip HTML markup from description and instructions")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: extract [-format json|yaml] [-parallel N] [-plain] url...")
		os.Exit(2)
	}
	if *format != "json" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fetcher := httpx.NewFetcher(cfg.Fetcher, httpx.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		HostRate:  rate.Limit(cfg.HostRatePerSecond),
	})
	kitchen := core.NewKitchenService(content.NewExtractor(fetcher), store.NewMemoryBook())

	results := kitchen.ImportMany(ctx, flag.Args(), *parallel)
	if err := writeResults(os.Stdout, *format, *plain, results); err != nil {
		slog.Error("failed to write output", "error", err)
		os.Exit(1)
	}

	for _, res := range results {
		if res.Err != nil {
			os.Exit(1)
		}
	}
}

type output struct {
	URL    string         `json:"url" yaml:"url"`
	Recipe map[string]any `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
	Kind   string         `json:"kind,omitempty" yaml:"kind,omitempty"`
}

func writeResults(w io.Writer, format string, plain bool, results []core.ImportResult) error {
	out := make([]output, 0, len(results))
	for _, res := range results {
		o := output{URL: res.URL}
		if res.Err != nil {
			o.Error = res.Err.Error()
			o.Kind = core.ClassifyError(res.Err)
			out = append(out, o)
			continue
		}

		r := res.Entry.Recipe
		if plain {
			r = plainRecipe(r)
		}

		// YAML output uses the keys of the JSON form.
		raw, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &o.Recipe); err != nil {
			return err
		}
		out = append(out, o)
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func plainRecipe(r recipe.Recipe) recipe.Recipe {
	r.Description = content.PlainText(r.Description)
	steps := make([]string, len(r.RecipeInstructions))
	for i, step := range r.RecipeInstructions {
		steps[i] = content.PlainText(step)
	}
	r.RecipeInstructions = steps
	return r
}
