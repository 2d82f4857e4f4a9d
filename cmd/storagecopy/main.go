// Command storagecopy moves every user and room from one store to another,
// for example when switching a deployment from file storage to postgres.
//
//	storagecopy -from file://data -to postgres://chat@localhost/chat
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/libertalk/internal/server/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("storagecopy", flag.ContinueOnError)
	from := fs.String("from", "", "source storage DSN")
	to := fs.String("to", "", "destination storage DSN")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" || *to == "" {
		return fmt.Errorf("both -from and -to are required")
	}
	if *from == *to {
		return fmt.Errorf("source and destination are the same")
	}

	src, err := storage.Open(ctx, *from)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := storage.Open(ctx, *to)
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	defer dst.Close()

	n, err := storage.Copy(ctx, dst, src)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "copied %d documents\n", n)
	return nil
}
