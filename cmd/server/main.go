package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/dmitrijs2005/libertalk/internal/buildinfo"
	"github.com/dmitrijs2005/libertalk/internal/server"
	"github.com/dmitrijs2005/libertalk/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("reading .env: %v", err)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
