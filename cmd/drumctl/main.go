// Command drumctl runs the gamification operations from the shell: enrolling
// students, recording lessons and practice, and maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vytor/drumdungeon/internal/app"
	"github.com/vytor/drumdungeon/internal/config"
	"github.com/vytor/drumdungeon/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(os.Stderr),
		logger.WithColors(false),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	ctx := logger.NewContext(context.Background(), log)
	application, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	c := &cli{app: application, out: os.Stdout, errOut: os.Stderr, env: os.Getenv}
	return c.dispatch(ctx, args)
}
