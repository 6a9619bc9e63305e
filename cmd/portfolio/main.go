package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/kjannette/portfolio-backend/internal/cli"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander, cli.LoadEnv)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
