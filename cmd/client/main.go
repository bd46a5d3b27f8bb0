package main

import (
	"fmt"
	"os"

	"github.com/skriptik666-dev/flick-messenger/internal/client"
)

func main() {
	if err := client.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
