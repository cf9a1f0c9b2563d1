package main

import (
	"context"

	"fvepg/cmd/fvepg/cmds"

	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(cmds.NewRootCLI().ExecuteContext(context.Background()))
}
