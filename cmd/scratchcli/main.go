package main

import (
	"github.com/robotalks/nanoboard/pkg/cli/sh"
	"github.com/robotalks/nanoboard/pkg/nanoboard"
	"github.com/robotalks/nanoboard/pkg/scratch"

	_ "github.com/robotalks/nanoboard/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	scratch.SetupFlags()
	nanoboard.SetupFlags()
}

func main() {
	sh.Main()
}
