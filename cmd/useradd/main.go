// Command useradd registers an account directly against the configured
// store. The password is read from the terminal without echo.
//
//	useradd -d sqlite:///var/lib/libertalk/chat.db alice
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/libertalk/internal/flagx"
	"github.com/dmitrijs2005/libertalk/internal/server"
	"github.com/dmitrijs2005/libertalk/internal/server/config"
	"github.com/dmitrijs2005/libertalk/internal/server/services"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("reading .env: %v", err)
	}

	username := lastPositional(os.Args[1:])
	if username == "" {
		fmt.Fprintln(os.Stderr, "usage: useradd [-c config.json] [-d dsn] <username>")
		os.Exit(2)
	}

	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	rm, err := server.OpenRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer rm.Close()

	us := services.NewUserService(rm, services.NewAccessGate(), cfg, server.NewLogger(cfg.LogLevel))
	user, err := us.Register(ctx, username, password, "")
	if err != nil {
		rm.Close()
		log.Fatalf("register %s: %v", username, err)
	}

	fmt.Printf("user %s created\n", user.UserName)
}

// lastPositional picks the username: the last argument that is neither a
// flag nor a flag value.
func lastPositional(args []string) string {
	pos := flagx.Positional(args)
	if len(pos) == 0 {
		return ""
	}
	return pos[len(pos)-1]
}

// readPassword prompts twice on a terminal; piped input is read as one line.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}

	fmt.Fprint(prompt, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
