package main

import (
	"context"
	"os"

	"rulemerge/pkg/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
