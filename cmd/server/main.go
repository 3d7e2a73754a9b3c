package main

import (
	"os"

	"hls-restream-panel/internal/platform/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.New("error", "text").Error("command failed", "error", err)
		os.Exit(1)
	}
}
