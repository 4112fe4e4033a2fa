package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bucketree/bucketree/internal/observability"
	"github.com/bucketree/bucketree/pkg/provider"
)

var rmCmd = &cobra.Command{
	Use:   "rm <uri>",
	Short: "Delete an object",
	Long: `Delete one object by its key. Deleting an absent object succeeds;
object stores are idempotent here.

Examples:
  bucketree rm s3://my-bucket/my/share/file1.jpg
  bucketree rm file://photos/albums/cover.png --base-dir /srv/data`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

var rmConn connectionFlags

func init() {
	rootCmd.AddCommand(rmCmd)
	rmConn.register(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	parsed, err := ParseURI(args[0])
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}
	if parsed.IsPattern() || parsed.IsPrefix() {
		return exitError(foundry.ExitInvalidArgument, "rm takes a single object key",
			fmt.Errorf("%q is not an object URI", args[0]))
	}

	prov, err := createProvider(ctx, parsed.Provider, rmConn)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = prov.Close() }()

	obj := &provider.Object{Container: parsed.Container, Key: parsed.Key}
	if err := prov.Delete(ctx, obj); err != nil {
		observability.CLILogger.Error("Delete failed",
			zap.String("key", parsed.Key), zap.Error(err))
		switch {
		case provider.IsContainerNotFound(err):
			return exitError(foundry.ExitFileNotFound, "Container not found", err)
		case provider.IsAccessDenied(err):
			return exitError(foundry.ExitFileWriteError, "Access denied", err)
		default:
			return exitError(foundry.ExitExternalServiceUnavailable, "Delete failed", err)
		}
	}

	fmt.Printf("Deleted %s\n", parsed.String())
	return nil
}
