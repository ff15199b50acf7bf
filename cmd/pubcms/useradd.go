package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/eringen/pubcms"
)

// readPassword is replaced in tests so they never touch the terminal.
var readPassword = term.ReadPassword

func newUserAddCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "useradd",
		Short: "Create an account in the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadConfig(v, *cfgFile)
			if err != nil {
				return err
			}
			if password == "" {
				pw, err := promptPassword(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = pw
			}

			store, err := pubcms.NewStore(fc.DatabasePath, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			err = store.CreateUser(cmd.Context(), username, password)
			if errors.Is(err, pubcms.ErrConflict) {
				return fmt.Errorf("user %q already exists", username)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func promptPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
