// Package cmd implements the bucketree command line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bucketree/bucketree/internal/config"
	"github.com/bucketree/bucketree/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "bucketree",
	Short: "Turn flat object listings into trees",
	Long: `bucketree snapshots the keys of an object-store container and arranges
them into a hierarchical tree, the way a file browser would.

Keys are split on '/'. A key can name an object and act as a directory
for deeper keys at the same time; both roles are kept.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := observability.InitCLILogger(logLevel, logJSON); err != nil {
			return err
		}
		if _, err := config.Load(cmd.Context()); err != nil {
			return err
		}
		return nil
	},
}

var (
	logLevel string
	logJSON  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")
}

// versionInfo holds build metadata injected by the linker via main.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version: "dev",
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// cliError carries a foundry exit code alongside the message.
type cliError struct {
	code int
	msg  string
	err  error
}

func (e *cliError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *cliError) Unwrap() error {
	return e.err
}

// exitError builds the error a RunE returns when the command should
// terminate with a specific foundry exit code.
func exitError[C ~int](code C, msg string, err error) error {
	return &cliError{code: int(code), msg: msg, err: err}
}

// Execute runs the root command and exits the process with the
// appropriate code.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		observability.Sync()
		return
	}

	code := 1
	var ce *cliError
	if errors.As(err, &ce) {
		code = ce.code
	}

	observability.CLILogger.Error("Command failed", zap.Error(err))
	observability.Sync()
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(code)
}
