package main

import (
	"context"
	"fmt"
	"os"

	utils "momentflow/internal"
	"momentflow/internal/cli"
)

func main() {
	ctx, stop := utils.SignalContext(context.Background())
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(cli.ExitCode(err))
	}
}
