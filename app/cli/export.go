package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"audiobook-storefront/app"
	"audiobook-storefront/models"
	"audiobook-storefront/service"
)

const shutdownTimeout = 10 * time.Second

func newExportCmd(o *rootOptions) *cobra.Command {
	var flags listingFlags
	var format, term, outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a catalog page to PDF or PNG",
		Long: `Renders one catalog page in a headless Chrome and writes it to PDF or PNG.
Covers are downloaded and cached before printing.

Example:
  storefront export --format png --genre fiction --out ./exports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != service.FormatPDF && format != service.FormatPNG {
				return models.NewValidationError("format", "expected pdf or png, got %q", format)
			}
			if outDir == "" {
				outDir = o.cfg.Export.OutputDir
			}

			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			paths, err := o.export(ctx, a, flags, term, format, outDir)
			if err != nil {
				return o.fail(ctx, cmd.OutOrStdout(), a, err)
			}
			return o.renderer.Message(cmd.OutOrStdout(), a.Storefront.Page(ctx, "Export"), "Exported:\n"+strings.Join(paths, "\n"))
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", service.FormatPDF, "pdf or png")
	cmd.Flags().StringVarP(&term, "query", "q", "", "Export search results for this term")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")
	return cmd
}

// export serves the render route on a loopback listener for the duration of the
// browser run
func (o *rootOptions) export(ctx context.Context, a *app.App, flags listingFlags, term, format, outDir string) ([]string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen for the render page: %w", err)
	}
	baseURL := "http://" + ln.Addr().String()

	handler, err := a.Handler(baseURL)
	if err != nil {
		ln.Close()
		return nil, err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: shutdownTimeout}

	var paths []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve the render page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		view, err := a.Storefront.ShowCatalog(gctx, flags.query(term))
		if err != nil {
			return err
		}
		if view.State == models.LoadStateError {
			return fmt.Errorf("failed to load catalog for export: %s", view.Error)
		}
		if err := a.Covers.Prefetch(gctx, view.Items); err != nil {
			o.logger.Warn("cover prefetch interrupted", zap.Error(err))
		}

		renderURL := baseURL + "/catalog/render"
		if encoded := flags.values(term).Encode(); encoded != "" {
			renderURL += "?" + encoded
		}
		o.logger.Debug("exporting catalog page", zap.String("url", renderURL), zap.String("format", format))

		switch format {
		case service.FormatPNG:
			pngs, err := a.Export.GeneratePNG(gctx, renderURL)
			if err != nil {
				return err
			}
			paths, err = service.WriteExport(outDir, format, nil, pngs)
			return err
		default:
			pdf, err := a.Export.GeneratePDF(gctx, renderURL)
			if err != nil {
				return err
			}
			paths, err = service.WriteExport(outDir, format, pdf, nil)
			return err
		}
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func newServeCmd(o *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				o.cfg.Server.Port = strings.TrimPrefix(port, ":")
				if err := o.cfg.Validate(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			handler, err := a.Handler(o.cfg.PublicBaseURL())
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              o.cfg.ListenAddr(),
				Handler:           handler,
				ReadHeaderTimeout: shutdownTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed to start: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			o.logger.Info("server starting", zap.String("addr", srv.Addr))
			fmt.Fprintf(cmd.OutOrStdout(), "Serving the storefront on %s (listening on %s)\n", o.cfg.PublicBaseURL(), srv.Addr)
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from config)")
	return cmd
}
