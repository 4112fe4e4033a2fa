package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/bucketree/bucketree/internal/errors"
	"github.com/bucketree/bucketree/internal/observability"
	"github.com/bucketree/bucketree/pkg/hierarchy"
	"github.com/bucketree/bucketree/pkg/provider"
)

// TreeHandlers serves the container and tree endpoints backed by a
// storage provider.
type TreeHandlers struct {
	provider provider.Provider
}

// NewTreeHandlers creates handlers backed by the given provider.
func NewTreeHandlers(p provider.Provider) *TreeHandlers {
	return &TreeHandlers{provider: p}
}

// ContainerResponse is one entry in the container listing.
type ContainerResponse struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// TreeNode is the JSON shape of one node in a tree response. Children
// keep the snapshot's order of first appearance.
type TreeNode struct {
	Name      string     `json:"name"`
	ObjectKey string     `json:"object_key,omitempty"`
	Size      int64      `json:"size,omitempty"`
	Children  []TreeNode `json:"children,omitempty"`
}

// TreeResponse is the body of the tree endpoint.
type TreeResponse struct {
	Container string     `json:"container"`
	Prefix    string     `json:"prefix,omitempty"`
	Objects   int64      `json:"objects"`
	Nodes     int64      `json:"nodes"`
	Roots     []TreeNode `json:"roots"`
}

// ListContainers serves GET /v1/containers.
func (h *TreeHandlers) ListContainers(w http.ResponseWriter, r *http.Request) {
	containers, err := h.provider.ListContainers(r.Context())
	if err != nil {
		observability.CLILogger.Error("Failed to list containers", zap.Error(err))
		apperrors.RespondWithError(w, r, err)
		return
	}

	resp := make([]ContainerResponse, 0, len(containers))
	for _, c := range containers {
		entry := ContainerResponse{Name: c.Name}
		if !c.CreatedAt.IsZero() {
			entry.CreatedAt = c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		resp = append(resp, entry)
	}

	writeJSON(w, resp)
}

// GetTree serves GET /v1/containers/{container}/tree.
//
// Query parameters:
//   - prefix: only keys under this prefix enter the snapshot
//   - max_objects: overrides the snapshot cap for this request
func (h *TreeHandlers) GetTree(w http.ResponseWriter, r *http.Request) {
	container := chi.URLParam(r, "container")
	prefix := r.URL.Query().Get("prefix")

	opts := provider.SnapshotOptions{Prefix: prefix}
	if raw := r.URL.Query().Get("max_objects"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apperrors.WriteError(w, r, http.StatusBadRequest,
				apperrors.CodeInvalidArgument, "max_objects must be a positive integer", nil)
			return
		}
		opts.MaxObjects = n
	}

	entries, err := provider.Snapshot(r.Context(), h.provider, container, opts)
	if err != nil {
		observability.CLILogger.Error("Failed to snapshot container",
			zap.String("container", container), zap.Error(err))
		apperrors.RespondWithError(w, r, err)
		return
	}

	forest, err := hierarchy.Build(entries)
	if err != nil {
		observability.CLILogger.Error("Failed to build tree",
			zap.String("container", container), zap.Error(err))
		apperrors.RespondWithError(w, r, err)
		return
	}

	resp := TreeResponse{
		Container: container,
		Prefix:    prefix,
		Objects:   int64(len(entries)),
		Roots:     renderNodes(forest),
	}
	resp.Nodes = countNodes(forest)

	writeJSON(w, resp)
}

func renderNodes(nodes hierarchy.Forest) []TreeNode {
	out := make([]TreeNode, 0, len(nodes))
	for _, n := range nodes {
		tn := TreeNode{Name: n.Name}
		if n.HasObject() {
			tn.ObjectKey = n.Ref.ObjectKey()
			if obj, ok := n.Ref.(*provider.Object); ok {
				tn.Size = obj.Size
			}
		}
		if len(n.Children) > 0 {
			tn.Children = renderNodes(n.Children)
		}
		out = append(out, tn)
	}
	return out
}

func countNodes(nodes hierarchy.Forest) int64 {
	var total int64
	for _, n := range nodes {
		total += 1 + countNodes(n.Children)
	}
	return total
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
