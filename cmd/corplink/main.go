package main

import (
	"fmt"
	"os"

	"arhat.dev/corplink/pkg/cmd"
)

func main() {
	err := cmd.NewCorplinkCmd().Execute()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
