package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/devserver"
	"github.com/harrylevesque/emailforms/internal/logging"
)

var (
	addr     string
	logLevel string
	tokenTTL time.Duration
	tlsCert  string
	tlsKey   string
)

var rootCmd = &cobra.Command{
	Use:   "emailforms-devserver",
	Short: "In-memory email form backend for local development",
	Long: fmt.Sprintf(`Serves the email form REST API from memory. Sign in as %s with
password %s. Nothing is emailed and all data is lost on exit.`, devserver.AdminEmail, devserver.AdminPassword),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	rootCmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.Flags().DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "access token lifetime")
	rootCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "PEM certificate; serves HTTPS with --tls-key")
	rootCmd.Flags().StringVar(&tlsKey, "tls-key", "", "PEM private key for --tls-cert")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := logging.NewLogger("", logLevel)
	if err != nil {
		return err
	}
	defer log.Close()

	srv, err := devserver.New(devserver.WithLogger(log), devserver.WithTokenTTL(tokenTTL))
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if (tlsCert == "") != (tlsKey == "") {
		return errors.New("--tls-cert and --tls-key must be given together")
	}
	if tlsCert != "" {
		if httpSrv.TLSConfig, err = devserver.LoadTLS(tlsCert, tlsKey, time.Now()); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("Server running", zap.String("addr", addr), zap.Bool("tls", httpSrv.TLSConfig != nil))
		if httpSrv.TLSConfig != nil {
			errc <- httpSrv.ListenAndServeTLS("", "")
			return
		}
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
