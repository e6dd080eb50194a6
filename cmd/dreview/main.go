package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	// earlyinit must be listed before bubbletea so its init() runs first and
	// pre-sets lipgloss.SetHasDarkBackground, preventing bubbletea's init()
	// from sending an OSC 11 terminal colour query that leaks into stdin.
	_ "github.com/Dhanuzh/dreview/internal/earlyinit"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Dhanuzh/dreview/internal/config"
	"github.com/Dhanuzh/dreview/internal/log"
	"github.com/Dhanuzh/dreview/internal/review"
	"github.com/Dhanuzh/dreview/internal/server"
	"github.com/Dhanuzh/dreview/internal/tui"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dreview",
		Short: "dreview - AI code review in your terminal",
		Long: `dreview sends a piece of code to a hosted language model through
OpenRouter and shows the review it writes back.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("model", "m", "", "Model identifier (see 'dreview models')")
	rootCmd.PersistentFlags().String("api-key", "", "OpenRouter API key")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.Flags().StringP("file", "f", "", "Prefill the code field from a file")

	rootCmd.AddCommand(
		tuiCmd(),
		reviewCmd(),
		modelsCmd(),
		serveCmd(),
		configCmd(),
		loginCmd(),
		logoutCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// tui command
// ---------------------------------------------------------------------------

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive review form (default)",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
	cmd.Flags().StringP("file", "f", "", "Prefill the code field from a file")
	return cmd
}

// runTUI is the default command - starts the TUI
func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The TUI owns the terminal, so records only go to the log file.
	logger, err := initLogging(cfg, false)
	if err != nil {
		return err
	}

	var code string
	filename, _ := cmd.Flags().GetString("file")
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filename, err)
		}
		code = string(data)
	}

	form := review.NewForm(cfg.ProviderFactory(),
		review.WithCode(code),
		review.WithAPIKey(cfg.APIKey),
		review.WithModel(cfg.Model),
		review.WithLogger(logger),
	)
	model := tui.New(form, tui.Options{
		Theme:      cfg.Theme,
		MaskAPIKey: cfg.MaskAPIKey,
		Filename:   filename,
		Logger:     logger,
	})

	logger.WithFields(logrus.Fields{
		"model":      cfg.Model,
		"key_source": cfg.KeySource(),
	}).Info("starting TUI")

	// Mouse stays disabled so terminal text selection works normally.
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithFilter(tui.FilterTerminalReplies),
	)
	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// review command
// ---------------------------------------------------------------------------

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [file]",
		Short: "Review a file or stdin without the TUI",
		Long: `Submit code for review and print the result. Code is read from the
given file, or from stdin when it is piped. The command exits non-zero
unless a review was produced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if !validFormat(format) {
				return fmt.Errorf("unknown format %q (text, json, yaml)", format)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger, err := initLogging(cfg, verbose)
			if err != nil {
				return err
			}

			code, err := readCode(args, os.Stdin)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			form := review.NewForm(cfg.ProviderFactory(),
				review.WithCode(code),
				review.WithAPIKey(cfg.APIKey),
				review.WithModel(cfg.Model),
				review.WithLogger(logger),
			)
			res := runReview(ctx, form)

			if err := writeResult(os.Stdout, format, res); err != nil {
				return err
			}
			if res.Outcome != review.OutcomeReviewed.String() {
				if format == formatText {
					printFailure(res)
				}
				return fmt.Errorf("review %s", res.Outcome)
			}
			return nil
		},
	}
	cmd.Flags().String("format", formatText, "Output format: text, json or yaml")
	return cmd
}

func printFailure(res reviewResult) {
	for _, line := range []string{res.Notice, res.KeyError, res.Review, res.Hint} {
		if line != "" {
			fmt.Fprintln(os.Stderr, line)
		}
	}
}

// ---------------------------------------------------------------------------
// models command
// ---------------------------------------------------------------------------

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the supported models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%-16s %-36s %s\n", "Name", "Model", "Default")
			fmt.Println(strings.Repeat("-", 60))
			for _, m := range review.Models() {
				def := ""
				if m.ID == review.DefaultModel() {
					def = "*"
				}
				fmt.Printf("%-16s %-36s %s\n", m.Name, m.ID, def)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// serve command
// ---------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Start a headless HTTP API that accepts review requests as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Server.Port = port
			}
			if host, _ := cmd.Flags().GetString("host"); host != "" {
				cfg.Server.Hostname = host
			}
			logger, err := initLogging(cfg, true)
			if err != nil {
				return err
			}

			srv := server.New(cfg, nil, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				logger.Info("shutting down server")
				if err := srv.Stop(context.Background()); err != nil {
					logger.WithError(err).Warn("shutdown failed")
				}
			}()

			return srv.Start()
		},
	}
	cmd.Flags().IntP("port", "P", 0, "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Hostname to bind (default from config)")
	return cmd
}

// ---------------------------------------------------------------------------
// config command
// ---------------------------------------------------------------------------

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or initialise configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().SaveConfig(path); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(map[string]interface{}{
				"api_key":      cfg.MaskedAPIKey(),
				"key_source":   cfg.KeySource(),
				"model":        cfg.Model,
				"base_url":     cfg.BaseURL,
				"timeout":      cfg.Timeout,
				"mask_api_key": cfg.MaskAPIKey,
				"theme":        cfg.Theme,
				"log_level":    cfg.LogLevel,
				"log_file":     cfg.LogPath(),
				"server":       cfg.Server,
				"config_file":  cfg.ConfigFile(),
			}, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.AddCommand(
		showCmd,
		&cobra.Command{
			Use:   "path",
			Short: "Show where configuration is read from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				if f := cfg.ConfigFile(); f != "" {
					fmt.Printf("Config file: %s\n", f)
				} else {
					fmt.Printf("Config file: none (default location %s)\n", config.DefaultConfigPath())
				}
				if p, err := config.GetCredentialsPath(); err == nil {
					fmt.Printf("Credentials: %s\n", p)
				}
				fmt.Printf("Log file:    %s\n\n", cfg.LogPath())
				fmt.Print(config.GetConfigPrecedence())
				return nil
			},
		},
		initCmd,
	)

	// Default to show
	cmd.RunE = showCmd.RunE

	return cmd
}

// ---------------------------------------------------------------------------
// login / logout
// ---------------------------------------------------------------------------

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store an OpenRouter API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Login(os.Stdin, os.Stdout)
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.Logout()
			if err != nil {
				return err
			}
			if removed {
				fmt.Println("✓ Stored credentials removed")
			} else {
				fmt.Println("No stored credentials")
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dreview version %s (%s)\n", version, commit)
			fmt.Printf("go version %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// loadConfig reads configuration and applies command-line flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if k, _ := cmd.Flags().GetString("api-key"); k != "" {
		cfg.SetAPIKey(k, "flag")
	}
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		cfg.Model = m
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.LogLevel = "debug"
	}
}

func initLogging(cfg *config.Config, stderr bool) (*logrus.Logger, error) {
	logger, err := log.InitLogger(log.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogPath(),
		Stderr: stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init logging: %w", err)
	}
	return logger, nil
}
