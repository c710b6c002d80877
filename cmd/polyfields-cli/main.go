package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, surveyPrompter{}); err != nil {
		if errors.Is(err, errAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "polyfields-cli: %v\n", err)
		os.Exit(1)
	}
}
