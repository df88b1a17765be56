package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	summaryout "meetnote/internal/modules/summary/adapter/out"
)

func TestPluginProviderReportsMissingBinary(t *testing.T) {
	t.Parallel()
	provider := summaryout.NewPluginProvider(filepath.Join(t.TempDir(), "no-such-summarizer"), nil)
	defer provider.Close()

	if _, err := provider.Generate(context.Background(), "Zoom"); err == nil {
		t.Fatalf("expected start error for missing plugin binary")
	}
	if provider.Name() == "" {
		t.Fatalf("provider name must be set before the plugin starts")
	}
}

func TestPluginProviderStartFailsFastForMissingBinary(t *testing.T) {
	t.Parallel()
	provider := summaryout.NewPluginProvider(filepath.Join(t.TempDir(), "no-such-summarizer"), nil)
	defer provider.Close()

	began := time.Now()
	if err := provider.Start(context.Background()); err == nil {
		t.Fatalf("expected start error for missing plugin binary")
	}
	if elapsed := time.Since(began); elapsed > 3*time.Second {
		t.Fatalf("start must give up within the start timeout, took %v", elapsed)
	}
}
