package cmd

import (
	"fmt"
	"path"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bucketree/bucketree/internal/observability"
	"github.com/bucketree/bucketree/pkg/provider"
)

var getCmd = &cobra.Command{
	Use:   "get <uri> [dest]",
	Short: "Download an object to a local file",
	Long: `Download one object to a local path. The destination defaults to the
object's base name in the current directory.

Examples:
  bucketree get s3://my-bucket/my/share/file1.jpg
  bucketree get s3://my-bucket/my/share/file1.jpg ./photos/file1.jpg
  bucketree get file://photos/albums/cover.png --base-dir /srv/data`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

var getConn connectionFlags

func init() {
	rootCmd.AddCommand(getCmd)
	getConn.register(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	parsed, err := ParseURI(args[0])
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}
	if parsed.IsPattern() || parsed.IsPrefix() {
		return exitError(foundry.ExitInvalidArgument, "get takes a single object key",
			fmt.Errorf("%q is not an object URI", args[0]))
	}

	destPath := path.Base(parsed.Key)
	if len(args) == 2 {
		destPath = args[1]
	}

	prov, err := createProvider(ctx, parsed.Provider, getConn)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = prov.Close() }()

	obj := &provider.Object{Container: parsed.Container, Key: parsed.Key}

	start := time.Now()
	if err := prov.Download(ctx, obj, destPath); err != nil {
		observability.CLILogger.Error("Download failed",
			zap.String("key", parsed.Key), zap.String("dest", destPath), zap.Error(err))
		switch {
		case provider.IsNotFound(err), provider.IsContainerNotFound(err):
			return exitError(foundry.ExitFileNotFound, "Object not found", err)
		case provider.IsAccessDenied(err):
			return exitError(foundry.ExitFileReadError, "Access denied", err)
		default:
			return exitError(foundry.ExitExternalServiceUnavailable, "Download failed", err)
		}
	}

	fmt.Printf("Downloaded %s -> %s (%s)\n", parsed.String(), destPath, formatDuration(time.Since(start)))
	return nil
}
