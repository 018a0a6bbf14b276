package main

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/cwbudde/algo-lanes/asset"
	"github.com/cwbudde/algo-lanes/engine"
	"github.com/cwbudde/algo-lanes/output"
	"github.com/cwbudde/algo-lanes/output/memory"
)

type toneLoader struct{}

func (toneLoader) Load(id string) (*asset.PCM, error) {
	return asset.Tone(id, 440, 0.5, 1, 48000, 2)
}

func dryPool(t *testing.T) (*engine.Pool, *memory.Renderer) {
	t.Helper()

	r := memory.NewRenderer(output.Format{SampleRate: 48000, Channels: 2})

	pool, err := engine.New(memory.NewRouter(), r, toneLoader{}, engine.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	if err := pool.BuildLanes(context.Background(), []string{"tone"}, true); err != nil {
		t.Fatalf("BuildLanes() error = %v", err)
	}

	return pool, r
}
