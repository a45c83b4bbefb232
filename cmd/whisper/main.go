package main

import (
	"fmt"
	"os"

	"github.com/layer-3/whisperbox/cmd/whisper/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
