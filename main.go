package main

import (
	"context"
	"os"

	"github.com/honganh1206/openclawd/cmd"
)

func main() {
	if err := cmd.NewCLI().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
