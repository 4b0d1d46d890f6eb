// Command clauseguard analyzes contracts for risky clauses.
//
//	clauseguard analyze lease.pdf --format markdown --out reports/
//	clauseguard serve --addr :8080
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/clauseguard/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
