// Package main provides the contract governance CLI.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	contractcmd "github.com/louisbranch/covenant.space/internal/cmd/contract"
	platformcmd "github.com/louisbranch/covenant.space/internal/platform/cmd"
	"github.com/louisbranch/covenant.space/internal/platform/config"
)

func main() {
	log.SetPrefix("[CONTRACT] ")

	cfg, err := contractcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceContract, func(ctx context.Context) error {
		return contractcmd.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
