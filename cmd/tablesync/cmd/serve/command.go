// Package serve provides the serve command running the HTTP API.
package serve

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync"
	"github.com/agentstation/tablesync/internal/appcontext"
	"github.com/agentstation/tablesync/internal/server"
	"github.com/agentstation/tablesync/internal/server/cache"
	"github.com/agentstation/tablesync/internal/watch"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/sources"
)

// NewCommand creates the serve command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the REST API",
		Long: `Start the HTTP API: text extraction, xlsx export, ingestion history,
stored records and on-demand ingestion.

Endpoints (under --prefix):
  GET    /health, /ready
  POST   /extract, /export
  GET    /history        POST /history      DELETE /history/{id}
  GET    /records        DELETE /records    DELETE /records/{id}
  POST   /ingest?source=<id>

HTTP_HOST and HTTP_PORT override --host and --port.`,
		Example: `  tablesync serve
  tablesync serve --port 3000 --cors
  tablesync serve --auto-ingest 30m --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.DefaultConfig()
			cfg.Host, _ = cmd.Flags().GetString("host")
			cfg.Port, _ = cmd.Flags().GetInt("port")
			cfg.PathPrefix, _ = cmd.Flags().GetString("prefix")
			cfg.CORSEnabled, _ = cmd.Flags().GetBool("cors")
			cfg.CORSOrigins, _ = cmd.Flags().GetStringSlice("cors-origins")
			cfg.CacheTTL, _ = cmd.Flags().GetDuration("cache-ttl")
			if len(cfg.CORSOrigins) > 0 {
				cfg.CORSEnabled = true
			}

			if envPort := os.Getenv("HTTP_PORT"); envPort != "" {
				if p, err := strconv.Atoi(envPort); err == nil {
					cfg.Port = p
				}
			}
			if envHost := os.Getenv("HTTP_HOST"); envHost != "" {
				cfg.Host = envHost
			}

			interval, _ := cmd.Flags().GetDuration("auto-ingest")
			watchDirs, _ := cmd.Flags().GetBool("watch")

			var (
				client tablesync.Client
				err    error
			)
			if interval > 0 {
				client, err = app.ClientWithOptions(
					tablesync.WithAutoIngest(true),
					tablesync.WithAutoIngestInterval(interval),
				)
			} else {
				client, err = app.Client()
			}
			if err != nil {
				return err
			}

			srv, err := server.New(client, client.Store(), cfg, app.Logger())
			if err != nil {
				return err
			}

			// Any run, scheduled or not, makes cached listings stale.
			client.OnRunCompleted(func(*ingest.Summary) {
				srv.Cache().Invalidate(cache.PrefixHistory, cache.PrefixRecords)
			})

			ctx := cmd.Context()
			if watchDirs {
				w, err := watch.New(client.Sources(), func(ctx context.Context, ids []sources.ID) {
					if _, err := client.IngestSources(ctx, ids); err != nil {
						app.Logger().Error().Err(err).Msg("Watch-triggered ingest failed")
					}
				})
				if err != nil {
					return err
				}
				go func() {
					if err := w.Run(ctx); err != nil {
						app.Logger().Error().Err(err).Msg("Watcher stopped")
					}
				}()
			}

			app.Logger().Info().
				Str("addr", srv.Addr()).
				Str("prefix", cfg.PathPrefix).
				Bool("cors", cfg.CORSEnabled).
				Dur("auto_ingest", interval).
				Bool("watch", watchDirs).
				Msg("Starting API server")
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated)")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "Response cache TTL")
	cmd.Flags().Duration("auto-ingest", 0, "Ingest every interval while serving (0 disables)")
	cmd.Flags().Bool("watch", false, "Ingest directory sources when files change")

	return cmd
}
