package main

import (
	"os"

	"github.com/kjk/catalog/cli"
)

// set with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	build := cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, build))
}
