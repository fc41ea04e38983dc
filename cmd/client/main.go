package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/emailforms/internal/app"
	"github.com/harrylevesque/emailforms/internal/config"
)

var (
	cfgFile  string
	apiURL   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "emailforms",
	Short: "Terminal admin client for the email form system",
	Long: `emailforms manages PDF forms, recipients, tracking, data extraction and
settings of an email form backend. Run "emailforms shell" for the
interactive client.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "backend API URL (overrides api_url)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides log.level)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// openApp builds the client. Frames are drawn to out.
func openApp(out io.Writer) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.Options{Out: out, Prompter: terminalPrompter{}})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
