package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-rental-session/authtest"
	"github.com/jrsteele09/go-rental-session/users"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local fake of the marketplace auth API",
	Long: `Serve /auth/login, /auth/register, /auth/refresh, /auth/logout, /auth/me,
/auth/delete-account and an echo of any /api/* request, backed by an
in-memory user list. Demo users are created for each role with the
password "password".`,
	RunE: runDevserver,
}

var devAccessTTL time.Duration

func init() {
	devserverCmd.Flags().DurationVar(&devAccessTTL, "access-ttl", 0, "access token lifetime (overrides ACCESS_TOKEN_TTL)")
	rootCmd.AddCommand(devserverCmd)
}

var demoUsers = []struct {
	username string
	role     users.RoleType
}{
	{"tenant", users.RoleTenant},
	{"landlord", users.RoleLandlord},
	{"admin", users.RoleAdmin},
}

func runDevserver(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	displayAppname(cfg.GetAppName())

	accessTTL := cfg.GetAccessTokenTTL()
	if devAccessTTL != 0 {
		accessTTL = devAccessTTL
	}
	backend := authtest.New(
		authtest.WithSecret(cfg.GetDevServerSecret()),
		authtest.WithAccessTTL(accessTTL),
		authtest.WithRefreshTTL(cfg.GetRefreshTokenTTL()),
		authtest.WithAllowedOrigins(cfg.GetAllowedOrigins().List()...),
		authtest.WithCORS(cfg.GetAllowedMethods(), cfg.GetAllowedHeaders()),
		authtest.WithRouteLogging(),
	)
	for _, u := range demoUsers {
		if _, err := backend.AddUser(u.username, u.username+"@example.com", "password", u.role); err != nil {
			return fmt.Errorf("[cli devserver] add %s: %w", u.username, err)
		}
	}

	server := &http.Server{
		Addr:              cfg.GetDevServerAddr(),
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(server)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Dev server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Dev server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
