package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bucketree/bucketree/internal/observability"
	"github.com/bucketree/bucketree/pkg/provider"
)

var containersCmd = &cobra.Command{
	Use:   "containers",
	Short: "List containers visible to the configured credentials",
	Long: `List every container (bucket or base directory entry) the current
provider can see.

Examples:
  bucketree containers
  bucketree containers --provider file --base-dir /srv/data`,
	Args: cobra.NoArgs,
	RunE: runContainers,
}

var (
	containersConn     connectionFlags
	containersProvider string
)

func init() {
	rootCmd.AddCommand(containersCmd)

	containersConn.register(containersCmd)
	containersCmd.Flags().StringVar(&containersProvider, "provider", "s3", "Storage provider (s3|file)")
}

func runContainers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	provType := provider.Type(containersProvider)
	prov, err := createProvider(ctx, provType, containersConn)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Failed to create storage provider", err)
	}
	defer func() { _ = prov.Close() }()

	containers, err := prov.ListContainers(ctx)
	if err != nil {
		observability.CLILogger.Error("Failed to list containers", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to list containers", err)
	}

	if len(containers) == 0 {
		fmt.Println("No containers found")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCREATED")
	for _, c := range containers {
		created := ""
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, created)
	}
	return tw.Flush()
}
