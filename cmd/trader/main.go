package main

import (
	"context"
	"os"

	"ib-trader/internal/cli"
	"ib-trader/internal/logging"
)

func main() {
	logger := logging.NewLogger()
	os.Exit(cli.Execute(context.Background(), logger))
}
