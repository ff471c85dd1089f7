package cli

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-rental-session/account"
	"github.com/jrsteele09/go-rental-session/token"
	"github.com/jrsteele09/go-rental-session/users"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session without contacting the server",
	RunE:  runStatus,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Fetch the signed-in user's profile",
	RunE:  runWhoami,
}

var requireRoles []string

func init() {
	statusCmd.Flags().StringSliceVar(&requireRoles, "require-role", nil, "fail unless the session holds one of these roles")
	rootCmd.AddCommand(statusCmd, whoamiCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	creds := a.session.Credentials()

	if creds.Empty() {
		fmt.Fprintln(out, "Not logged in")
	} else {
		fmt.Fprintf(out, "User:   %s\n", creds.Username)
		fmt.Fprintf(out, "Role:   %s\n", creds.Role)
		fmt.Fprintf(out, "Token:  %s\n", a.fetch.State())
		if exp, ok := token.Expiry(creds.AccessToken); ok {
			fmt.Fprintf(out, "Expiry: %s (%s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
		}
	}

	if len(requireRoles) == 0 {
		return nil
	}
	allowed := make([]users.RoleType, 0, len(requireRoles))
	for _, r := range requireRoles {
		role, err := users.ParseRole(r)
		if err != nil {
			return err
		}
		allowed = append(allowed, role)
	}
	return account.Authorize(a.session, allowed...)
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	user, err := a.account.Profile(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> id=%s role=%s\n", user.Username, user.Email, user.ID, user.Role)
	return nil
}
