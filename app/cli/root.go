// Package cli is the storefront command line. Every invocation is one page load;
// the cart and the session live in the configured storage between invocations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"audiobook-storefront/app"
	"audiobook-storefront/config"
	"audiobook-storefront/render"
)

type rootOptions struct {
	configPath string
	verbose    bool

	logger   *zap.Logger
	cfg      *config.Config
	renderer render.Renderer
}

// reportedError is an error already rendered to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the storefront command line until it finishes or is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCommand().ExecuteContext(ctx)
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{})
}

func newRootCommand(o *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Audiobook storefront",
		Long: `Browse the audiobook catalog, keep a cart and place orders.

The cart and the login session are kept in local storage (a JSON file by default)
and survive between invocations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.logger == nil {
				logCfg := zap.NewProductionConfig()
				if o.verbose {
					logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
				} else {
					logCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
				}
				logger, err := logCfg.Build()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				o.logger = logger
			}

			cfg, err := config.Load(o.configPath)
			if err != nil {
				return err
			}
			o.cfg = cfg
			if o.renderer == nil {
				o.renderer = render.NewTextRenderer()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newCatalogCmd(o),
		newSearchCmd(o),
		newItemCmd(o),
		newAddCmd(o),
		newCartCmd(o),
		newCheckoutCmd(o),
		newLoginCmd(o),
		newLogoutCmd(o),
		newExportCmd(o),
		newServeCmd(o),
	)
	return rootCmd
}

// open wires the storefront for one command. The caller closes the returned App.
func (o *rootOptions) open(ctx context.Context) (*app.App, error) {
	a, err := app.Initialize(ctx, o.cfg, o.logger)
	if err != nil {
		return nil, err
	}
	a.Storefront.OnCartChange(func(count int) {
		o.logger.Debug("cart badge updated", zap.Int("count", count))
	})
	return a, nil
}

// fail renders err for the user and marks it as reported
func (o *rootOptions) fail(ctx context.Context, out io.Writer, a *app.App, err error) error {
	if rerr := o.renderer.Error(out, a.Storefront.Page(ctx, "Error"), err); rerr != nil {
		return rerr
	}
	return &reportedError{err: err}
}
