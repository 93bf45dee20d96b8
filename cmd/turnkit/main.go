// Command turnkit chats with tool-using agents from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := New().Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
