// Command hashpw prints a bcrypt hash for seeding or repairing user rows.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"go-user-auth/internal/logger"
	"go-user-auth/internal/service"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	slog.SetDefault(slog.New(logger.New(os.Stderr, "info", "pretty")))

	password, err := readPassword()
	if err != nil {
		slog.Error("failed to read password", "error", err)
		os.Exit(1)
	}
	if password == "" {
		slog.Error("password must not be empty")
		os.Exit(1)
	}

	hash, err := service.NewPasswordHasher(*cost).Hash(password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
