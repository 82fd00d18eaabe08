package main

import (
	"os"
)

func main() {
	// cobra already printed the error; only the exit code is left to set.
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
