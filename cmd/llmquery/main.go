// Command llmquery runs a single query against an OpenAI-compatible chat
// backend from the shell. Prompt arguments are positional KEY=VALUE pairs,
// UPPERCASE keys by convention; flags select the backend, the operation and
// optional answer restyling. Requires the selected provider's API key in the
// environment or a .env file.
//
//	llmquery QUESTION="What is the capital of Piedmont?"
//	llmquery -block json TASK="List three Go proverbs as a JSON array."
//	llmquery -stream -style eli5 QUESTION="How does consensus work in Raft?"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/leofalp/llmwrap/core/client"
	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/internal/utils"
	"github.com/leofalp/llmwrap/patterns/restyle"
	"github.com/leofalp/llmwrap/patterns/retry"
	"github.com/leofalp/llmwrap/providers/ai/openaichat"
	"github.com/leofalp/llmwrap/providers/observability/slogobs"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	providerName := flag.String("provider", "openai", "backend: openai, cerebras or groq")
	model := flag.String("model", "", "model override (default: the backend's preset)")
	blockType := flag.String("block", "", "request a fenced block of this type, e.g. json or python")
	stream := flag.Bool("stream", false, "print chunks as they arrive instead of waiting for the full answer")
	temperature := flag.Float64("temperature", -1, "sampling temperature in [0, 2] (negative = backend default)")
	maxTokens := flag.Int("max-tokens", 0, "cap on generated tokens (0 = backend default)")
	style := flag.String("style", "", `rephrase the answer with this instruction ("eli5" for the built-in one)`)
	verbose := flag.Bool("verbose", false, "log query spans to stderr and report token usage")
	flag.Usage = usage
	flag.Parse()

	promptArgs, err := parsePromptArgs(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "llmquery:", err)
		os.Exit(2)
	}
	if len(promptArgs) == 0 {
		usage()
		os.Exit(2)
	}

	backend, err := openaichat.ForProvider(*providerName, *model)
	if err != nil {
		log.Fatalf("llmquery: %v", err)
	}

	var clientOptions []func(*client.ClientOptions)
	if *verbose {
		clientOptions = append(clientOptions,
			client.WithObservability(slogobs.New(slogobs.WithLevel(slog.LevelDebug))))
	}

	// Innermost to outermost: adapter, optional restyling, retries. Retry
	// sits outside so a flaky backend re-runs the whole composed query.
	var w wrapper.Wrapper = client.New(backend, clientOptions...)
	switch {
	case *style == "":
	case strings.EqualFold(*style, "eli5"):
		w = restyle.NewELI5(w)
	default:
		w = restyle.New(w, *style)
	}
	w = retry.New(w, retry.Config{})

	var api wrapper.ApiArgs
	if *temperature >= 0 {
		api.Temperature = utils.Ptr(*temperature)
	}
	if *maxTokens > 0 {
		api.MaxTokens = utils.Ptr(*maxTokens)
	}

	ctx := context.Background()
	switch {
	case *stream:
		err = runStream(ctx, w, promptArgs, api)
	case *blockType != "":
		err = runBlock(ctx, w, *blockType, promptArgs, api)
	default:
		err = runResponse(ctx, w, promptArgs, api, *verbose)
	}
	if err != nil {
		log.Fatalf("llmquery: %v", err)
	}
}

// parsePromptArgs turns positional KEY=VALUE arguments into prompt
// arguments. A bare argument without '=' is rejected rather than guessed
// at.
func parsePromptArgs(args []string) (wrapper.PromptArgs, error) {
	promptArgs := make(wrapper.PromptArgs, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("argument %q is not KEY=VALUE", arg)
		}
		promptArgs[key] = value
	}
	return promptArgs, nil
}

func runResponse(ctx context.Context, w wrapper.Wrapper, promptArgs wrapper.PromptArgs, api wrapper.ApiArgs, verbose bool) error {
	text, tokens, err := w.QueryResponse(ctx, promptArgs, api)
	if err != nil {
		return err
	}
	fmt.Println(text)
	if verbose {
		fmt.Fprintf(os.Stderr, "tokens: %d\n", tokens)
	}
	return nil
}

func runBlock(ctx context.Context, w wrapper.Wrapper, blockType string, promptArgs wrapper.PromptArgs, api wrapper.ApiArgs) error {
	text, err := w.QueryBlock(ctx, blockType, promptArgs, api)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runStream(ctx context.Context, w wrapper.Wrapper, promptArgs wrapper.PromptArgs, api wrapper.ApiArgs) error {
	stream, err := w.QueryStream(ctx, promptArgs, api)
	if err != nil {
		return err
	}
	for chunk, err := range stream.Iter() {
		if err != nil {
			fmt.Println()
			return err
		}
		fmt.Print(chunk)
	}
	fmt.Println()
	return nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `llmquery runs one query against an OpenAI-compatible chat backend.

Usage:

  llmquery [flags] KEY=VALUE [KEY=VALUE ...]

Prompt arguments are KEY=VALUE pairs, UPPERCASE keys by convention:

  llmquery QUESTION="What is the capital of Piedmont?"
  llmquery -provider groq -stream QUESTION="Explain goroutines."
  llmquery -block json TASK="List three Go proverbs as a JSON array."

The API key is read from the selected provider's environment variable
(OPENAI_API_KEY, CEREBRAS_API_KEY or GROQ_API_KEY); a .env file in the
working directory is loaded automatically.

Flags:

`)
	flag.PrintDefaults()
}
