package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"finax-server/src/config"
	"finax-server/src/models"
)

func newAddUserCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user with the default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if password == "" {
				fmt.Fprint(stdout, "Password: ")
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(stdout) // Print newline after password input
			}
			if strings.TrimSpace(password) == "" {
				return errors.New("password cannot be empty")
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.auth.Register(cmd.Context(), models.RegisterRequest{Name: name, Email: email, Password: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (optional, will prompt if omitted)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
