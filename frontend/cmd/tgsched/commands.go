package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/purplesanya/tg-bot/frontend/internal/router"
	"github.com/purplesanya/tg-bot/frontend/internal/setup"
	"github.com/purplesanya/tg-bot/shared/config"
	"github.com/purplesanya/tg-bot/shared/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

func newRootCommand() *cobra.Command {
	var configFolder string

	root := &cobra.Command{
		Use:           "tgsched",
		Short:         "Local web UI for the recurring message scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFolder, "config_folder", "", "path to folder with public.yaml (defaults when empty)")

	loadConfig := func() (*config.Config, error) {
		// TGSCHED_* overrides may also come from a .env file
		_ = godotenv.Load()
		if configFolder == "" {
			return config.Default()
		}
		return config.Load(configFolder)
	}

	root.AddCommand(newServeCommand(loadConfig))
	root.AddCommand(newAccountsCommand(loadConfig))
	root.AddCommand(newVersionCommand())
	return root
}

type configLoader func() (*config.Config, error)

func newServeCommand(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		return err
	}
	defer deps.CancelFunc()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Public.Port),
		Handler:      router.SetupRouter(deps),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("starting web ui", "addr", srv.Addr, "api", cfg.Public.APIBaseURL, "state", cfg.Public.StatePath())
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		logger.Log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		deps.Sync.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	deps.Sync.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("shutdown error", "error", err)
	}
	deps.Sync.Wait()
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newAccountsCommand(loadConfig configLoader) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect and edit the stored accounts",
	}

	accountsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored accounts, marking the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := setup.OpenAccounts(cfg.Public)
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), store.Snapshot())
			return nil
		},
	})

	accountsCmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a stored account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := setup.OpenAccounts(cfg.Public)
			if err != nil {
				return err
			}
			if _, ok := store.Snapshot().Get(id); !ok {
				return fmt.Errorf("no stored account %d", id)
			}
			remaining, err := store.Remove(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", id)
			printAccounts(cmd.OutOrStdout(), remaining)
			return nil
		},
	})

	return accountsCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tgsched", version)
		},
	}
}
