/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/valpere/unfriction/internal/config"
	"github.com/valpere/unfriction/internal/language"
	"github.com/valpere/unfriction/internal/orchestrator"
	"github.com/valpere/unfriction/internal/placeholder"
	"github.com/valpere/unfriction/internal/policy"
	"github.com/valpere/unfriction/internal/rewrite"
	"github.com/valpere/unfriction/internal/segment"
	"github.com/valpere/unfriction/internal/store"
)

// openStore opens the database at the configured path, creating its
// directory when needed.
func openStore() (*store.Store, error) {
	if dir := filepath.Dir(cfg.DB); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(cfg.DB, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// buildRewriter constructs the configured backends in fallback order.
// Backends that cannot be constructed (missing key, endpoint) are skipped
// with a warning; it fails only when none is left.
func buildRewriter(ctx context.Context, prompter *rewrite.Prompter) (rewrite.Rewriter, error) {
	names, err := cfg.Backends()
	if err != nil {
		return nil, err
	}

	var list []rewrite.Rewriter
	for _, name := range names {
		bc, err := cfg.BackendConfig(name)
		if err != nil {
			return nil, err
		}

		var rw rewrite.Rewriter
		switch name {
		case config.Azure:
			rw, err = rewrite.NewAzureRewriter(bc, prompter, logger, nil)
		case config.OpenRouter:
			if bc.APIKey == "" {
				err = fmt.Errorf("openrouter: %w", rewrite.ErrMissingKey)
				break
			}
			rw = rewrite.NewOpenRouterRewriter(bc, prompter, logger)
		case config.Ollama:
			rw = rewrite.NewOllamaRewriter(bc, prompter, logger)
		case config.Gemini:
			rw, err = rewrite.NewGeminiRewriter(ctx, bc, prompter, logger)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Backend %s unavailable: %v, skipping\n", name, err)
			continue
		}
		list = append(list, rw)
	}

	switch len(list) {
	case 0:
		return nil, fmt.Errorf("no valid backends configured")
	case 1:
		return list[0], nil
	}
	return rewrite.NewChain(logger, list...), nil
}

// buildOrchestrator wires policy, backends, cache, protected phrases and the
// language guard. db may be nil; it then runs without cache and protected
// phrases.
func buildOrchestrator(ctx context.Context, db *store.Store) (*orchestrator.Orchestrator, rewrite.Rewriter, error) {
	pol, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return nil, nil, err
	}

	rw, err := buildRewriter(ctx, rewrite.NewPrompter(pol))
	if err != nil {
		return nil, nil, err
	}

	var terms []string
	if db != nil {
		if !cfg.NoCache {
			rw = rewrite.NewCached(rw, db, logger)
		}
		terms, err = db.PhraseTerms(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load protected phrases: %w", err)
		}
	}

	oc := orchestrator.Config{
		Logger:         logger,
		Protector:      placeholder.New(terms),
		EnsureTerminal: cfg.Pipeline.EnsureTerminal,
		ContextWords:   cfg.Pipeline.ContextWords,
	}
	if cfg.Language != "" {
		oc.Guard = language.New(cfg.Language)
	}

	logger.Debug("pipeline ready",
		zap.String("backend", rw.Name()),
		zap.Int("protected_phrases", len(terms)),
		zap.Bool("cache", db != nil && !cfg.NoCache))

	return orchestrator.New(segment.New(), rw, oc), rw, nil
}

// writeOutput writes data to path, creating its directory.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
