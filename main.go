package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitUsageError))
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&playCommand{cfg: cfg}, "")
	subcommands.Register(&simulateCommand{cfg: cfg}, "")
	subcommands.Register(&throughputCommand{cfg: cfg}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
