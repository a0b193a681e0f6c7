package main

import (
	"fmt"
	"os"

	"k8s.io/cli-runtime/pkg/genericiooptions"

	"github.com/hashmap-kz/kubiq/cmd"
)

func main() {
	streams := genericiooptions.IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}

	rootCmd := cmd.NewRootCmd(streams)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(streams.ErrOut, err)
		if tipped, ok := err.(interface{ Tip() string }); ok {
			fmt.Fprintln(streams.ErrOut, tipped.Tip())
		}
		os.Exit(1)
	}
}
