package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clog "github.com/nao1215/contactscan/internal/log"
)

// NewRootCmd creates the root command for ContactScan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contactscan",
		Short: "Discover and verify contact emails for social-media identities",
		Long: `ContactScan finds contact email addresses for social-media identities.

For every profile it reads the bio, crawls the declared external website and
the personal sites it links to, guesses conventional addresses on domains
that proved to host real mailboxes, and checks each candidate against DNS MX
records and, optionally, an SMTP RCPT probe. The candidate log is then
reduced to one best address per identity.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().Bool("mask-emails", false, "Mask email addresses in logs (j***@domain)")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .contactscan in current or home directory)")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewReduceCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the run context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getStringFlag retrieves a string flag from the command or the root's
// persistent flags.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// setupLogger creates the secure logger selected by the global flags.
// Logs go to stderr so stdout stays clean for reports.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getBoolFlag(cmd, "verbose")
	opts := []clog.HandlerOption{clog.WithEmailMasking(getBoolFlag(cmd, "mask-emails"))}

	if getBoolFlag(cmd, "log-json") {
		return clog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose, opts...)
	}
	return clog.NewSecureLogger(cmd.ErrOrStderr(), verbose, opts...)
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
