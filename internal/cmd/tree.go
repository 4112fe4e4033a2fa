package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bucketree/bucketree/internal/observability"
	"github.com/bucketree/bucketree/pkg/hierarchy"
	"github.com/bucketree/bucketree/pkg/manifest"
	"github.com/bucketree/bucketree/pkg/match"
	"github.com/bucketree/bucketree/pkg/output"
	"github.com/bucketree/bucketree/pkg/provider"
)

var treeCmd = &cobra.Command{
	Use:   "tree [uri]",
	Short: "Build a tree from a container's keys",
	Long: `Snapshot the keys of a container and arrange them into a tree.

Keys are split on '/'. Sibling order follows the order keys first appear
in the listing; nothing is sorted. A key that names an object and also
prefixes deeper keys produces a single node that is both.

Examples:
  bucketree tree s3://my-bucket
  bucketree tree s3://my-bucket/my/share/
  bucketree tree s3://my-bucket --include 'data/2024/**' --output jsonl
  bucketree tree file://photos --base-dir /srv/data
  bucketree tree --view view.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

var (
	treeConn          connectionFlags
	treeView          string
	treeIncludes      []string
	treeExcludes      []string
	treeIncludeHidden bool
	treeMaxObjects    int
	treeRateLimit     float64
	treeOutput        string
)

func init() {
	rootCmd.AddCommand(treeCmd)

	treeConn.register(treeCmd)
	treeCmd.Flags().StringVar(&treeView, "view", "", "View manifest file (YAML or JSON)")
	treeCmd.Flags().StringArrayVar(&treeIncludes, "include", nil, "Include glob pattern (repeatable)")
	treeCmd.Flags().StringArrayVar(&treeExcludes, "exclude", nil, "Exclude glob pattern (repeatable)")
	treeCmd.Flags().BoolVar(&treeIncludeHidden, "hidden", false, "Include hidden keys (segments starting with .)")
	treeCmd.Flags().IntVar(&treeMaxObjects, "max-objects", 0, "Max keys in the snapshot (0 = default cap)")
	treeCmd.Flags().Float64Var(&treeRateLimit, "rate-limit", 0, "Max list requests per second (0 = unlimited)")
	treeCmd.Flags().StringVar(&treeOutput, "output", "text", "Output format (text|table|jsonl)")
}

// treeRun is the resolved input of one tree invocation, after flags and
// an optional view manifest have been merged.
type treeRun struct {
	provType  provider.Type
	container string
	matchCfg  match.Config
	snapOpts  provider.SnapshotOptions
}

func runTree(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	run, err := resolveTreeRun(args)
	if err != nil {
		return err
	}

	matcher, err := match.New(run.matchCfg)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid include/exclude patterns", err)
	}

	prov, err := createProvider(ctx, run.provType, treeConn)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = prov.Close() }()

	start := time.Now()

	entries, err := provider.Snapshot(ctx, prov, run.container, run.snapOpts)
	if err != nil {
		if ctx.Err() != nil {
			return exitError(foundry.ExitSignalInt, "Snapshot cancelled", ctx.Err())
		}
		observability.CLILogger.Error("Failed to snapshot container",
			zap.String("container", run.container), zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to list container", err)
	}

	entries = filterEntries(entries, matcher)

	forest, err := hierarchy.Build(entries)
	if err != nil {
		observability.CLILogger.Error("Failed to build tree", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Listing cannot form a tree", err)
	}

	switch treeOutput {
	case "text":
		return renderTreeText(os.Stdout, forest)
	case "table":
		return renderTreeTable(os.Stdout, forest)
	case "jsonl":
		return emitTreeJSONL(ctx, run, forest, entries, time.Since(start))
	default:
		return exitError(foundry.ExitInvalidArgument, "Invalid --output value", fmt.Errorf("expected text, table or jsonl"))
	}
}

// resolveTreeRun merges the URI argument, flags, and optional view
// manifest into one run description. Flags win over manifest values.
func resolveTreeRun(args []string) (*treeRun, error) {
	run := &treeRun{
		matchCfg: match.Config{
			Includes:      treeIncludes,
			Excludes:      treeExcludes,
			IncludeHidden: treeIncludeHidden,
		},
		snapOpts: provider.SnapshotOptions{
			MaxObjects: treeMaxObjects,
			RateLimit:  treeRateLimit,
		},
	}

	if treeView != "" {
		m, err := manifest.Load(treeView)
		if err != nil {
			observability.CLILogger.Error("Failed to load view manifest",
				zap.String("path", treeView), zap.Error(err))
			return nil, exitError(foundry.ExitInvalidArgument, "Invalid view manifest", err)
		}

		run.provType = provider.Type(m.Connection.Provider)
		run.container = m.Connection.Container
		if treeConn.region == "" {
			treeConn.region = m.Connection.Region
		}
		if treeConn.endpoint == "" {
			treeConn.endpoint = m.Connection.Endpoint
		}
		if treeConn.profile == "" {
			treeConn.profile = m.Connection.Profile
		}
		if treeConn.baseDir == "" {
			treeConn.baseDir = m.Connection.BaseDir
		}
		if len(run.matchCfg.Includes) == 0 {
			run.matchCfg.Includes = m.Filter.Includes
		}
		if len(run.matchCfg.Excludes) == 0 {
			run.matchCfg.Excludes = m.Filter.Excludes
		}
		run.matchCfg.IncludeHidden = run.matchCfg.IncludeHidden || m.Filter.IncludeHidden
		if run.snapOpts.MaxObjects == 0 {
			run.snapOpts.MaxObjects = m.Limits.MaxObjects
		}
		if run.snapOpts.RateLimit == 0 {
			run.snapOpts.RateLimit = m.Limits.RateLimit
		}
	}

	if len(args) == 1 {
		parsed, err := ParseURI(args[0])
		if err != nil {
			observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
			return nil, exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
		}
		if parsed.IsPattern() {
			return nil, exitError(foundry.ExitInvalidArgument, "tree takes a prefix URI, not a pattern",
				fmt.Errorf("use --include for glob scoping"))
		}
		run.provType = parsed.Provider
		run.container = parsed.Container
		run.snapOpts.Prefix = parsed.Key
	}

	if run.container == "" {
		return nil, exitError(foundry.ExitInvalidArgument, "No container given",
			fmt.Errorf("pass a URI argument or --view manifest"))
	}

	return run, nil
}

// filterEntries drops entries the matcher rejects, reusing the input
// slice's backing array.
func filterEntries(entries []hierarchy.FlatEntry, m *match.Matcher) []hierarchy.FlatEntry {
	kept := entries[:0]
	for _, e := range entries {
		if m.Match(e.Key) {
			kept = append(kept, e)
		}
	}
	return kept
}

// renderTreeText prints the forest with box-drawing connectors, one
// node per line. Nodes that carry an object are marked with '*' when
// they also have children.
func renderTreeText(w io.Writer, forest hierarchy.Forest) error {
	for i, root := range forest {
		if err := renderNodeText(w, root, "", i == len(forest)-1); err != nil {
			return err
		}
	}
	return nil
}

func renderNodeText(w io.Writer, node *hierarchy.Node, indent string, last bool) error {
	connector := "├── "
	childIndent := indent + "│   "
	if last {
		connector = "└── "
		childIndent = indent + "    "
	}

	label := node.Name
	if node.HasObject() && node.IsDir() {
		label += " *"
	}
	if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, connector, label); err != nil {
		return err
	}

	for i, child := range node.Children {
		if err := renderNodeText(w, child, childIndent, i == len(node.Children)-1); err != nil {
			return err
		}
	}
	return nil
}

// renderTreeTable prints one row per node with path, depth and size.
func renderTreeTable(w io.Writer, forest hierarchy.Forest) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "PATH\tDEPTH\tKIND\tSIZE"); err != nil {
		return err
	}

	err := forest.Walk(func(ancestors []string, node *hierarchy.Node) error {
		kind := nodeKind(node)
		size := ""
		if obj, ok := node.Ref.(*provider.Object); ok {
			size = formatSize(obj.Size)
		}
		_, err := fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			hierarchy.PathOf(ancestors, node), len(ancestors), kind, size)
		return err
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}

func nodeKind(node *hierarchy.Node) string {
	switch {
	case node.HasObject() && node.IsDir():
		return "both"
	case node.IsDir():
		return "dir"
	default:
		return "object"
	}
}

// emitTreeJSONL writes node records depth-first, then a summary.
func emitTreeJSONL(ctx context.Context, run *treeRun, forest hierarchy.Forest, entries []hierarchy.FlatEntry, dur time.Duration) error {
	jobID := uuid.New().String()
	w := output.NewJSONLWriter(os.Stdout, jobID, string(run.provType))
	defer func() { _ = w.Close() }()

	records := output.ForestRecords(forest, func(ref hierarchy.ObjectRef) output.ObjectMeta {
		obj, ok := ref.(*provider.Object)
		if !ok {
			return output.ObjectMeta{}
		}
		meta := output.ObjectMeta{Size: obj.Size, ETag: obj.ETag}
		if !obj.LastModified.IsZero() {
			lm := obj.LastModified
			meta.LastModified = &lm
		}
		return meta
	})

	var bytesTotal int64
	for _, rec := range records {
		if err := w.WriteNode(ctx, &rec); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to write record", err)
		}
		bytesTotal += rec.Size
	}

	nodes, objects, maxDepth := output.ForestSummary(forest)
	sum := &output.SummaryRecord{
		Container:     run.container,
		Objects:       objects,
		Nodes:         nodes,
		Roots:         int64(len(forest)),
		MaxDepth:      maxDepth,
		BytesTotal:    bytesTotal,
		Duration:      dur,
		DurationHuman: formatDuration(dur),
	}
	if err := w.WriteSummary(ctx, sum); err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write summary", err)
	}

	observability.CLILogger.Debug("Tree complete",
		zap.String("job_id", jobID),
		zap.Int("entries", len(entries)),
		zap.Int64("nodes", nodes),
	)
	return nil
}
