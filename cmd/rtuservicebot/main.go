package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jdelaire/rtuservicebot/adapters/console"
	tgnotifier "github.com/jdelaire/rtuservicebot/adapters/telegram_notifier"
	tgreceiver "github.com/jdelaire/rtuservicebot/adapters/telegram_receiver"
	"github.com/jdelaire/rtuservicebot/core"
	"github.com/jdelaire/rtuservicebot/core/configwatch"
	"github.com/jdelaire/rtuservicebot/core/ops"
	"github.com/jdelaire/rtuservicebot/core/policy"
	"github.com/jdelaire/rtuservicebot/internal/config"
	"github.com/jdelaire/rtuservicebot/internal/keychain"
	"github.com/jdelaire/rtuservicebot/internal/logging"
	"github.com/jdelaire/rtuservicebot/internal/responder"
	"github.com/jdelaire/rtuservicebot/internal/tgclient"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "rtuservicebot",
		Short:         "Run the RTUServiceBot Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(f)
			if err != nil {
				return err
			}
			if err := runTelegram(cmd.Context(), cfg, logger); err != nil {
				logger.Error("bot stopped", "error", err)
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "path to a .env file (ignored if missing)")

	root.AddCommand(newConsoleCmd(f))
	return root
}

func newConsoleCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot on stdin/stdout without Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(f)
			if err != nil {
				return err
			}
			return runConsole(cmd.Context(), cfg, logger)
		},
	}
}

func setup(f *flags) (*config.Config, *slog.Logger, error) {
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("load env file %s: %w", f.envFile, err)
		}
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// bot holds the transport-independent pieces shared by both run modes.
type bot struct {
	responder *responder.Responder
	registry  *ops.Registry
	policy    *policy.Policy
	reloader  *core.Reloader
}

func newBot(cfg *config.Config, logger *slog.Logger) (*bot, error) {
	resp, err := responder.FromFile(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	registry := ops.NewRegistry()
	if err := ops.RegisterDefaults(registry); err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}

	pol := policy.New(policy.Options{
		AllowedChats: cfg.Telegram.AllowedChatIDs,
		MaxAge:       cfg.Telegram.MaxMessageAge,
	})

	return &bot{
		responder: resp,
		registry:  registry,
		policy:    pol,
		reloader:  core.NewReloader(resp, logger),
	}, nil
}

func (b *bot) watchRules(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	if cfg.Rules.Path == "" {
		return
	}
	w := configwatch.New(cfg.Rules.WatchInterval, logger)
	w.Watch(cfg.Rules.Path, b.reloader.ReloadRules)
	go w.Run(ctx)
	logger.Info("watching rules file", "path", cfg.Rules.Path, "interval", cfg.Rules.WatchInterval)
}

func runTelegram(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	token, err := cfg.ResolveToken(func() (string, error) {
		return keychain.Get(keychain.TokenAccount)
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := newBot(cfg, logger)
	if err != nil {
		return err
	}

	api, err := tgclient.New(ctx, token, tgclient.Options{
		Endpoint: cfg.Telegram.APIEndpoint,
		Debug:    cfg.Telegram.Debug,
	})
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	logger.Info("authorized", "bot", api.Self.UserName)

	if err := tgclient.SetCommands(api, b.registry.Commands()); err != nil {
		logger.Warn("could not publish command menu", "error", err)
	}

	dispatcher := core.NewDispatcher(b.policy, b.registry, b.responder, tgnotifier.New(api), logger).
		WithBotUsername(api.Self.UserName)

	b.watchRules(ctx, cfg, logger)

	logger.Info("bot is running")
	return tgreceiver.New(api, dispatcher.Handle, logger).Start(ctx)
}

func runConsole(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := newBot(cfg, logger)
	if err != nil {
		return err
	}

	// The console has a single local chat, so the Telegram allowlist does
	// not apply.
	pol := policy.New(policy.Options{MaxAge: cfg.Telegram.MaxMessageAge})
	dispatcher := core.NewDispatcher(pol, b.registry, b.responder, console.NewNotifier(os.Stdout), logger)
	b.watchRules(ctx, cfg, logger)

	return console.NewReceiver(os.Stdin, dispatcher.Handle, logger).Start(ctx)
}
