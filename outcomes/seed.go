// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package outcomes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danielhkuo/crossroads/models"
)

// Seed is the JSON document accepted by LoadSeed.
//
//	{"current": 1, "outcomes": [{"id": 1, "title": "...", ...}]}
type Seed struct {
	Current  int64            `json:"current"`
	Outcomes []models.Outcome `json:"outcomes"`
}

// LoadSeedFile reads a seed document from path and applies it.
func LoadSeedFile(ctx context.Context, store Store, path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(ctx, store, f)
}

// LoadSeed validates every outcome before writing any, then upserts them.
// Current only places the pointer when the store has no current outcome
// yet, so reseeding on restart keeps the story position.
func LoadSeed(ctx context.Context, store Store, r io.Reader) (Seed, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}

	for _, o := range seed.Outcomes {
		if err := o.Validate(); err != nil {
			return Seed{}, err
		}
	}
	for _, o := range seed.Outcomes {
		if err := store.PutOutcome(ctx, o); err != nil {
			return Seed{}, err
		}
	}
	if seed.Current <= 0 {
		return seed, nil
	}
	if _, err := store.GetCurrentOutcome(ctx); err == nil {
		return seed, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Seed{}, fmt.Errorf("read current outcome: %w", err)
	}
	if err := store.SetCurrentOutcome(ctx, seed.Current); err != nil {
		return Seed{}, fmt.Errorf("seed current outcome: %w", err)
	}
	return seed, nil
}
