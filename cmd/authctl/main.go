// Command authctl is an operator tool for managing accounts directly against
// the configured credential store: registering users and granting roles
// without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/example/authgate/internal/flagx"
	"github.com/example/authgate/internal/server"
	"github.com/example/authgate/internal/server/config"
	"github.com/example/authgate/internal/server/users"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() error {
	var (
		login string
		email string
		role  string
	)

	args := flagx.FilterArgs(os.Args[1:], []string{"-login", "-email", "-role"})

	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.StringVar(&login, "login", "", "login of the account to create")
	fs.StringVar(&email, "email", "", "email of the account to create")
	fs.StringVar(&role, "role", users.RoleGuest, "initial role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if login == "" || email == "" {
		return fmt.Errorf("usage: authctl -login <login> -email <email> [-role <role>]")
	}

	cfg := config.LoadConfig()
	if cfg.StorageAdapter == "memory" {
		return fmt.Errorf("the memory adapter is process-local; authctl requires -m postgres")
	}

	ctx := context.Background()

	storage, err := server.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	fmt.Println("Enter password")
	password, err := readPassword(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}

	hash, err := users.NewBcryptHasher().Hash(string(password))
	if err != nil {
		return err
	}

	created, err := storage.Users.Create(ctx, &users.User{
		Login:        login,
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{role},
	})
	if err != nil {
		return err
	}

	fmt.Printf("created user %s (id=%s, role=%s)\n", created.Login, created.ID, role)
	return nil
}
