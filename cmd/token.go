package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"portfolio/pkg/auth"
	"portfolio/pkg/clock"
)

// newTokenCmd creates a new command for issuing a bearer token
func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the admin user",
		Long: `Prompt for the admin password and print a token that can be sent as
"Authorization: Bearer <token>" to the content API.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := LoadConfig()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			if err := cfg.RequireAuth(); err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}

			password, err := readPassword()
			if err != nil {
				log.Fatalf("Failed to read password: %v", err)
			}

			svc := auth.NewService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.TokenTTL, clock.Real{})
			token, err := svc.Login(cfg.AdminUsername, password)
			if err != nil {
				log.Fatalf("Login failed: %v", err)
			}
			fmt.Println(token)
		},
	}
}

// readPassword reads without echo from a terminal, or one line from a pipe.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
