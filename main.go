package main

import (
	"fmt"
	"os"

	"github.com/fish0048-ai/my-ai-coach/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
