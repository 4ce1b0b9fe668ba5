package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authdir/internal/client/cli"
)

func main() {
	cmd := cli.NewRootCmd()

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
