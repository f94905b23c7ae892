package main

import (
	"github.com/NVIDIA/tracecollect/pkg/cli"
)

func main() {
	cli.Execute()
}
