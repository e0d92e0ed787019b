package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	StoragePath string `env:"CMD_TEST_STORAGE_PATH" envDefault:"contract.db"`
	Driver      string `env:"CMD_TEST_STORAGE_DRIVER" envDefault:"sqlite"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_STORAGE_PATH", "env.db")
	t.Setenv("CMD_TEST_STORAGE_DRIVER", "bbolt")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.StoragePath, "storage", cfg.StoragePath, "storage path")
	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "storage driver")

	if err := ParseArgs(fs, []string{"-storage", "flag.db"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if cfg.StoragePath != "flag.db" {
		t.Fatalf("expected flag override, got %q", cfg.StoragePath)
	}
	if cfg.Driver != "bbolt" {
		t.Fatalf("expected env value, got %q", cfg.Driver)
	}
}

func TestParseConfigNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected error for nil config target")
	}
}

func TestParseArgsNilFlagSet(t *testing.T) {
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected error for nil flag set")
	}
}

func TestRunWithTelemetryRequiresService(t *testing.T) {
	err := RunWithTelemetry(context.Background(), "  ", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for empty service name")
	}
}

func TestRunWithTelemetryRequiresRun(t *testing.T) {
	err := RunWithTelemetry(context.Background(), ServiceContract, nil)
	if err == nil {
		t.Fatal("expected error for nil run function")
	}
}

func TestRunWithTelemetryPropagatesRunError(t *testing.T) {
	t.Setenv("COVENANT_OTEL_ENDPOINT", "")
	wantErr := errors.New("run failed")
	err := RunWithTelemetry(context.Background(), ServiceContract, func(context.Context) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected run error, got %v", err)
	}
}
