// Package cli holds the command-line subcommands next to the default
// serve mode.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"manhua-tracker/internal/auth"
	"manhua-tracker/internal/config"
	"manhua-tracker/internal/database"
	"manhua-tracker/internal/database/users"
)

// CreateAdminCommand creates an administrator account, prompting for the
// password without echo when it is not passed via flag.
type CreateAdminCommand struct {
	Username     string
	Email        string
	Password     string
	DatabasePath string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new admin account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email for the new admin account (optional)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the new admin account (prompted when omitted)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -username <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account directly in the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return errors.New("required flag -username not provided")
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	cfg := config.NewConfig()

	password := cmd.Password
	if password == "" {
		prompted, err := promptPassword()
		if err != nil {
			return err
		}
		password = prompted
	}
	if len(strings.TrimSpace(password)) < auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}

	db, err := database.NewDatabase(cmd.DatabasePath, database.SeedPasswords{
		Admin:  cfg.Seed.AdminPassword,
		Reader: cfg.Seed.ReaderPassword,
		Cost:   cfg.Auth.BcryptCost,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(strings.TrimSpace(password), cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	var email *string
	if trimmed := strings.TrimSpace(cmd.Email); trimmed != "" {
		email = &trimmed
	}

	repo := users.NewRepository(db.DB)
	user, err := repo.Create(strings.TrimSpace(cmd.Username), email, true, hash)
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return fmt.Errorf("username or email already exists")
		}
		return err
	}

	fmt.Printf("Created admin account %q (id %d)\n", user.Username, user.ID)
	return nil
}

// promptPassword reads the password twice from the terminal without echo.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
