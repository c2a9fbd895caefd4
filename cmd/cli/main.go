package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/cloudbank/internal/client/cli"
	"github.com/dmitrijs2005/cloudbank/internal/client/config"
	"github.com/dmitrijs2005/cloudbank/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	os.Exit(app.Run(ctx, flagx.DropArgs(os.Args[1:], config.Flags)))

}
