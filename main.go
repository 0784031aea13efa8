package main

import (
	"fmt"
	"os"

	"github.com/yuja201/S13P31B201-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
