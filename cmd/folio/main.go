package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser := kong.Parse(&cli,
		kong.Name("folio"),
		kong.Description("Build portfolio content collections from markdown."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	)
	err := parser.Run(&Global{Context: ctx, Stdout: os.Stdout, Stderr: os.Stderr}, &cli)
	parser.FatalIfErrorf(err)
}
