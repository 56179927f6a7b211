package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"briefdesk/internal/applog"
	"briefdesk/internal/config"
	"briefdesk/internal/events"
	"briefdesk/internal/notify"
	"briefdesk/internal/relay"
	"briefdesk/internal/store"
	"briefdesk/internal/ui"
	"briefdesk/internal/webserver"
	"briefdesk/internal/workflow"
)

func openStore() (*store.Store, error) {
	dbPath := config.DBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	return pw, err
}

func main() {
	if len(os.Args) >= 3 && os.Args[1] == "adduser" {
		username := os.Args[2]
		pw, err := readPassword(fmt.Sprintf("Password for %s: ", username))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		hash, err := bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		if _, err := st.CreateAccount(username, string(hash)); err != nil {
			fmt.Fprintf(os.Stderr, "error creating account: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Account created: %s\n", username)
		return
	}

	if len(os.Args) >= 3 && os.Args[1] == "passwd" {
		username := os.Args[2]
		pw, err := readPassword(fmt.Sprintf("New password for %s: ", username))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		hash, err := bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		st, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		acc, err := st.GetAccountByUsername(username)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: user not found: %v\n", err)
			os.Exit(1)
		}
		st.UpdateAccountPassword(acc.ID, string(hash))
		st.DeleteRefreshTokensByAccount(acc.ID)
		fmt.Printf("Password updated: %s (all sessions invalidated)\n", username)
		return
	}

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load config: %v\n", err)
		cfg = config.Defaults()
	}
	if slices.Contains(os.Args[1:], "--headless") {
		cfg.UI.Enabled = false
	}

	if err := config.EnsureJWTSecret(config.DefaultPath(), &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not persist JWT secret: %v\n", err)
	}

	logger, logCloser, err := applog.Init(applog.InitConfig{
		LogDir:   cfg.LogDir,
		LogLevel: cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not init log file: %v\n", err)
		logger = slog.Default() // falls back to default (stderr)
	} else {
		defer logCloser.Close()
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	registry := events.NewRegistry()
	rel := relay.New(registry, logger)

	var out *notify.Notifier
	if cfg.Notifications.Enabled {
		out = notify.New(notify.Config{
			Enabled: cfg.Notifications.Enabled,
			Webhook: cfg.Notifications.Webhook,
			NtfyURL: cfg.Notifications.NtfyURL,
		}, logger)
	}

	eng := workflow.New(st, rel, out, workflow.Config{
		InboxDir:     cfg.InboxDir,
		MaxSentences: cfg.Summary.MaxSentences,
	}, logger)

	web := webserver.New(st, registry, webserver.Config{
		Enabled: cfg.Webserver.Enabled,
		Port:    cfg.Webserver.Port,
		Host:    cfg.Webserver.Host,
		TLS: webserver.TLSConfig{
			Mode:     cfg.Webserver.TLS.Mode,
			CertFile: cfg.Webserver.TLS.CertFile,
			KeyFile:  cfg.Webserver.TLS.KeyFile,
			CacheDir: tlsCacheDir(cfg),
		},
		Auth: webserver.AuthConfig{
			JWTSecret:       cfg.Webserver.Auth.JWTSecret,
			RefreshTokenTTL: cfg.Webserver.Auth.RefreshTokenTTL,
		},
	}, logger)

	var app *ui.App
	if cfg.UI.Enabled {
		app = ui.NewApp(st, logger)
		// The local dashboard attaches first, making it the primary target
		// for relayed events; browser surfaces queue behind it.
		registry.Attach(app)
	}

	if err := web.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: webserver: %v\n", err)
	}

	if err := eng.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: could not start workflow: %v\n", err)
		os.Exit(1)
	}
	defer eng.Stop()

	if app != nil {
		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("running headless; press ctrl-c to exit")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}

func tlsCacheDir(cfg config.Config) string {
	if cfg.Webserver.TLS.CacheDir != "" {
		return cfg.Webserver.TLS.CacheDir
	}
	return config.CertsDir()
}
