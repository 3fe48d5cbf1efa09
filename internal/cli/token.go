package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/chumash/internal/auth"
	"github.com/mrlokans/chumash/internal/config"
)

// TokenCommand issues a bearer token for AUTH_MODE=jwt.
type TokenCommand struct {
	UserID  string
	NewUser bool
}

func NewTokenCommand() *TokenCommand {
	return &TokenCommand{}
}

func (cmd *TokenCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)

	fs.StringVar(&cmd.UserID, "user", "", "User id the token is issued for")
	fs.BoolVar(&cmd.NewUser, "new", false, "Generate a new user id")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s token [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Issue a bearer token signed with AUTH_JWT_SECRET.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.UserID == "" && !cmd.NewUser {
		fs.Usage()
		return fmt.Errorf("either -user or -new is required")
	}
	return nil
}

func (cmd *TokenCommand) Run() error {
	cfg := config.NewConfig()
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is not set")
	}

	userID := cmd.UserID
	if cmd.NewUser {
		userID = auth.NewUserID()
	}

	token, err := auth.NewTokenService(cfg.Auth).Issue(userID)
	if err != nil {
		return err
	}
	fmt.Printf("User:  %s\n", userID)
	fmt.Printf("Token: %s\n", token)
	return nil
}
