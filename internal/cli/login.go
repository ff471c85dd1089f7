package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jrsteele09/go-rental-session/authapi"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and store the session",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session on the server and remove it locally",
	RunE:  runLogout,
}

var (
	loginEmail    string
	loginPassword string
	regUsername   string
	regRole       string
)

const passwordEnvVar = "RENTAL_PASSWORD"

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
		c.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (or "+passwordEnvVar+")")
		_ = c.MarkFlagRequired("email")
	}
	registerCmd.Flags().StringVarP(&regUsername, "username", "u", "", "username, at least 3 characters")
	registerCmd.Flags().StringVar(&regRole, "role", "", "tenant, landlord or admin (default tenant)")
	_ = registerCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
}

func password() (string, error) {
	if loginPassword != "" {
		return loginPassword, nil
	}
	if p := os.Getenv(passwordEnvVar); p != "" {
		return p, nil
	}
	return "", errors.New("a password is required: use --password or " + passwordEnvVar)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	pw, err := password()
	if err != nil {
		return err
	}

	creds, err := a.account.Login(cmd.Context(), loginEmail, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", creds.Username, creds.Role)
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	pw, err := password()
	if err != nil {
		return err
	}

	creds, err := a.account.Register(cmd.Context(), authapi.RegisterRequest{
		Username: regUsername,
		Email:    loginEmail,
		Password: pw,
		Role:     regRole,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s (%s)\n", creds.Username, creds.Role)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	if err := a.account.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}
