package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jrsteele09/go-rental-session/account"
	"github.com/jrsteele09/go-rental-session/authapi"
	"github.com/jrsteele09/go-rental-session/authfetch"
	"github.com/jrsteele09/go-rental-session/internal/config"
	"github.com/jrsteele09/go-rental-session/internal/utils"
	"github.com/jrsteele09/go-rental-session/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is the state shared by the session commands
type app struct {
	cfg     config.Config
	session *session.Session
	api     *authapi.Client
	fetch   *authfetch.Client
	account *account.Service
	closers []func() error
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "rentalctl",
	Short: "Manage a rental marketplace session from the terminal",
	Long: `rentalctl logs in to the rental marketplace API, keeps the access token
fresh and sends authenticated requests with it. It can also run a local fake
of the auth API for front end development.`,
	SilenceUsage: true,
}

// Execute runs the root command; ctx is cancelled on interrupt
func Execute(ctx context.Context) error {
	defer func() {
		if current != nil {
			current.close()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("base-url", "", "API base URL (overrides API_BASE_URL)")
}

// loadConfig reads the configuration and sets up logging
func loadConfig() (config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.GetEnv(), cfg.GetLogLevel())
	return cfg, nil
}

// openApp wires the session, its store and the API clients
func openApp(cmd *cobra.Command) (*app, error) {
	if current != nil {
		return current, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(ctx, store, session.WithRefreshWindow(cfg.GetRefreshWindow()))
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	baseURL := cfg.GetAPIBaseURL()
	if flag, _ := cmd.Flags().GetString("base-url"); flag != "" {
		baseURL = flag
	}
	httpClient := &http.Client{Timeout: cfg.GetHTTPTimeout()}
	api := authapi.New(baseURL, httpClient)
	fetch := authfetch.New(baseURL, sess, api,
		authfetch.WithHTTPClient(httpClient),
		authfetch.WithLoginRedirector(loginRedirector(os.Stderr, utils.ResolveURL(baseURL, cfg.GetLoginPath()))),
	)

	current = &app{
		cfg:     cfg,
		session: sess,
		api:     api,
		fetch:   fetch,
		account: account.New(api, fetch),
		closers: []func() error{closeStore},
	}
	return current, nil
}

// loginRedirector tells the user where to sign in again once the session ends
func loginRedirector(w io.Writer, loginURL string) authfetch.LoginRedirector {
	return func(_ context.Context, err error) {
		fmt.Fprintf(w, "Session ended (%v). Sign in at %s or run `rentalctl login`.\n", err, loginURL)
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Err(err).Msg("Failed to close session store")
		}
	}
}

func setupLogging(env, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
