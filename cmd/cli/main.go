package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/eutype/internal/buildinfo"
	"github.com/dmitrijs2005/eutype/internal/client/cli"
	"github.com/dmitrijs2005/eutype/internal/client/config"
)

func main() {

	buildinfo.PrintBanner(os.Stdout, "EUTYPE")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
