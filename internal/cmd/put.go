package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bucketree/bucketree/internal/observability"
	"github.com/bucketree/bucketree/pkg/provider"
)

var putCmd = &cobra.Command{
	Use:   "put <local-path> <uri>",
	Short: "Upload a file or directory",
	Long: `Upload a local file to an object key, or a local directory tree under
a key prefix. When the URI ends with '/', the local base name is
appended; when uploading a directory, each file's relative path becomes
its key suffix.

Examples:
  bucketree put ./photo.jpg s3://my-bucket/my/share/photo.jpg
  bucketree put ./photo.jpg s3://my-bucket/my/share/
  bucketree put ./albums/ s3://my-bucket/backups/albums/`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

var putConn connectionFlags

func init() {
	rootCmd.AddCommand(putCmd)
	putConn.register(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	localPath := args[0]

	parsed, err := ParseURI(args[1])
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}
	if parsed.IsPattern() {
		return exitError(foundry.ExitInvalidArgument, "put takes a key or prefix URI, not a pattern", nil)
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot read local path", err)
	}

	prov, err := createProvider(ctx, parsed.Provider, putConn)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = prov.Close() }()

	start := time.Now()

	if info.IsDir() {
		n, bytes, err := uploadDir(cmd, prov, parsed, localPath)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %d objects (%s) in %s\n", n, formatSize(bytes), formatDuration(time.Since(start)))
		return nil
	}

	key := parsed.Key
	if parsed.IsPrefix() {
		key += filepath.Base(localPath)
	}

	obj, err := prov.Upload(ctx, parsed.Container, key, localPath)
	if err != nil {
		observability.CLILogger.Error("Upload failed",
			zap.String("key", key), zap.Error(err))
		return uploadExitError(err)
	}

	fmt.Printf("Uploaded %s -> %s://%s/%s (%s, %s)\n",
		localPath, parsed.Provider, parsed.Container, obj.Key,
		formatSize(obj.Size), formatDuration(time.Since(start)))
	return nil
}

// uploadDir walks the local directory and uploads every regular file,
// mapping its slash-separated relative path under the URI's key prefix.
func uploadDir(cmd *cobra.Command, prov provider.Provider, parsed *ObjectURI, dir string) (int, int64, error) {
	ctx := cmd.Context()

	// Directory contents go under <prefix><dir-base>/ so the upload
	// mirrors the local layout.
	prefix := parsed.Key
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	prefix += filepath.Base(filepath.Clean(dir)) + "/"

	var count int
	var bytes int64
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := prefix + filepath.ToSlash(rel)

		obj, err := prov.Upload(ctx, parsed.Container, key, p)
		if err != nil {
			observability.CLILogger.Error("Upload failed",
				zap.String("key", key), zap.Error(err))
			return err
		}

		observability.CLILogger.Debug("Uploaded object",
			zap.String("key", key), zap.Int64("size", obj.Size))
		count++
		bytes += obj.Size
		return nil
	})
	if err != nil {
		return count, bytes, uploadExitError(err)
	}
	return count, bytes, nil
}

func uploadExitError(err error) error {
	switch {
	case provider.IsContainerNotFound(err):
		return exitError(foundry.ExitFileNotFound, "Container not found", err)
	case provider.IsAccessDenied(err):
		return exitError(foundry.ExitFileWriteError, "Access denied", err)
	default:
		return exitError(foundry.ExitExternalServiceUnavailable, "Upload failed", err)
	}
}
