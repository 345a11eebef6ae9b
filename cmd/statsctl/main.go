// Command statsctl prints one snapshot from a running hwstats agent.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"hwstats-agent/internal/monitoring"
)

func main() {
	fs := pflag.NewFlagSet("statsctl", pflag.ExitOnError)
	url := fs.String("url", "http://127.0.0.1:5000", "base URL of the agent")
	modeFlag := fs.StringP("mode", "m", "full", "snapshot shape: full, min or stats")
	retries := fs.IntP("retries", "r", 3, "retries on transport errors and 5xx responses")
	timeout := fs.Duration("timeout", 30*time.Second, "overall deadline including retries")
	fs.Parse(os.Args[1:])

	mode, ok := monitoring.ParseMode(*modeFlag)
	if !ok {
		fmt.Fprintf(os.Stderr, "statsctl: unknown mode %q\n", *modeFlag)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := newStatsClient(*url, *retries, 500*time.Millisecond, 5*time.Second)
	body, err := client.Fetch(ctx, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "statsctl: %v\n", err)
		os.Exit(1)
	}

	out, err := indentJSON(body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "statsctl: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
}
