package main

import (
	"os"

	"github.com/armadaproject/abilaunch/cmd/abilaunch/cmd"
	"github.com/armadaproject/abilaunch/internal/common"
)

func main() {
	common.ConfigureCommandLineLogging()
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
