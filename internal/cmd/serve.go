package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bucketree/bucketree/internal/config"
	"github.com/bucketree/bucketree/internal/observability"
	"github.com/bucketree/bucketree/internal/server"
	"github.com/bucketree/bucketree/internal/server/handlers"
	"github.com/bucketree/bucketree/pkg/provider"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tree API server",
	Long: `Serve the tree API over HTTP. The server exposes container listing
and on-demand tree building, plus health and version endpoints.

Endpoints:
  GET /v1/containers                  list containers
  GET /v1/containers/{name}/tree      build the container's tree
  GET /health, /health/live, /health/ready, /version

Configuration comes from bucketree.yaml and BUCKETREE_* environment
variables; flags override both.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveConn     connectionFlags
	serveHost     string
	servePort     int
	serveProvider string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveConn.register(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config)")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "Storage provider (s3|file, default from config)")
}

// providerChecker adapts a storage provider to the health interface by
// issuing a cheap ListContainers call.
type providerChecker struct {
	prov provider.Provider
}

func (c *providerChecker) CheckHealth(ctx context.Context) error {
	_, err := c.prov.ListContainers(ctx)
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.GetConfig()
	if cfg == nil {
		return exitError(foundry.ExitInvalidArgument, "Configuration not loaded", errors.New("config.Load did not run"))
	}

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	provType := provider.Type(cfg.Provider.Type)
	if serveProvider != "" {
		provType = provider.Type(serveProvider)
	}

	prov, err := createProvider(ctx, provType, serveConn)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = prov.Close() }()

	handlers.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
	handlers.InitHealthManager(versionInfo.Version)
	handlers.GetHealthManager().RegisterChecker("provider", &providerChecker{prov: prov})

	srv := server.New(host, port)
	srv.MountProvider(prov)

	observability.CLILogger.Info("Starting server",
		zap.String("addr", srv.Addr()),
		zap.String("provider", string(provType)),
	)

	if err := srv.Start(ctx, cfg.Server.ShutdownTimeout); err != nil {
		observability.CLILogger.Error("Server failed", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
	}

	if ctx.Err() != nil {
		observability.CLILogger.Info("Server stopped on signal")
	}
	return nil
}
