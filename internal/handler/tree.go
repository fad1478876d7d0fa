// Package handler provides HTTP handlers for the Treeify REST API.
package handler

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ALiangTech/treeify/internal/config"
	mfs "github.com/ALiangTech/treeify/internal/fs"
	"github.com/ALiangTech/treeify/internal/logging"
	"github.com/ALiangTech/treeify/internal/metrics"
	"github.com/ALiangTech/treeify/internal/session"
	"github.com/ALiangTech/treeify/internal/tree"
	"github.com/ALiangTech/treeify/internal/walker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LocalSessionID is the session holding the folder given with --path.
const LocalSessionID = "local"

// TreeNode is the JSON form of a node for the browser
type TreeNode struct {
	Name         string      `json:"name"`
	Type         tree.Kind   `json:"type"`
	Path         string      `json:"path"`
	Children     []*TreeNode `json:"children,omitempty"`
	Size         *int64      `json:"size,omitempty"`
	SizeText     string      `json:"sizeText,omitempty"`
	LastModified *int64      `json:"lastModified,omitempty"`
	Visible      bool        `json:"visible"`
}

// TreeResponse is returned by every endpoint that yields a tree
type TreeResponse struct {
	ID     string      `json:"id"`
	Source string      `json:"source"`
	Tree   []*TreeNode `json:"tree"`
	Text   string      `json:"text"`
	Hidden []string    `json:"hidden"`
	Stats  *tree.Stats `json:"stats,omitempty"`
}

// BuildOptions are the per-request overrides of the configured build options
type BuildOptions struct {
	MaxDepth       int      `json:"maxDepth"`
	ExcludeFolders []string `json:"excludeFolders"`
	RootLabel      string   `json:"rootLabel"`
}

// BuildRequest carries flat file records, as a folder picker reports them
type BuildRequest struct {
	Records []tree.Record `json:"records"`
	Options *BuildOptions `json:"options"`
}

// EntriesRequest carries a hierarchical drop listing
type EntriesRequest struct {
	Entries []mfs.Entry   `json:"entries"`
	Options *BuildOptions `json:"options"`
}

// VisibilityRequest shows, hides or toggles one node
type VisibilityRequest struct {
	Path    string `json:"path" binding:"required"`
	Visible *bool  `json:"visible"`
}

// TreeHandler handles tree building and view-state requests
type TreeHandler struct {
	cfg   *config.Config
	store *session.Store
	ws    *WSHandler

	loadMu sync.Mutex // one LoadFolder at a time, so the last walk is the one stored
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(cfg *config.Config, store *session.Store, ws *WSHandler) *TreeHandler {
	return &TreeHandler{cfg: cfg, store: store, ws: ws}
}

func (h *TreeHandler) options(o *BuildOptions) (tree.Options, error) {
	opts := h.cfg.TreeOptions()
	if o == nil {
		return opts, nil
	}
	if o.MaxDepth < 0 {
		return opts, errors.New("maxDepth must be positive")
	}
	if o.MaxDepth > 0 {
		opts.MaxDepth = o.MaxDepth
	}
	if o.ExcludeFolders != nil {
		opts.ExcludeFolders = o.ExcludeFolders
	}
	if o.RootLabel != "" {
		opts.RootLabel = o.RootLabel
	}
	return opts, nil
}

// build turns records into a forest, logging and recording the outcome
func (h *TreeHandler) build(c *gin.Context, source string, records []tree.Record, opts tree.Options, start time.Time) ([]*tree.Node, tree.Stats) {
	forest, stats := tree.BuildWithStats(records, opts)
	metrics.RecordBuild(source, forest, stats, time.Since(start))
	logger := logging.L()
	if c != nil {
		logger = logging.WithContext(c.Request.Context())
	}
	logger.Info("tree built",
		zap.String("source", source),
		zap.Int("records", stats.Records),
		zap.Int("files", stats.Files),
		zap.Int("skipped", stats.Skipped()),
		zap.Int("roots", len(forest)),
	)
	return forest, stats
}

// BuildFromRecords builds a tree from flat records and opens a session for it
func (h *TreeHandler) BuildFromRecords(c *gin.Context) {
	start := time.Now()
	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request: " + err.Error(),
		})
		return
	}
	opts, err := h.options(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	forest, stats := h.build(c, "records", req.Records, opts, start)
	snap := h.store.Create(forest, "records")
	metrics.SetSessionsActive(h.store.Len())
	c.JSON(http.StatusCreated, response(snap, &stats))
}

// BuildFromEntries walks a drop listing depth-first and opens a session for the result
func (h *TreeHandler) BuildFromEntries(c *gin.Context) {
	start := time.Now()
	var req EntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request: " + err.Error(),
		})
		return
	}
	opts, err := h.options(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := walker.WalkAll(mfs.NewEntryFS(req.Entries), h.cfg.WalkOptions())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "failed to read dropped entries: " + err.Error(),
		})
		return
	}

	forest, stats := h.build(c, "entries", records, opts, start)
	snap := h.store.Create(forest, "entries")
	metrics.SetSessionsActive(h.store.Len())
	c.JSON(http.StatusCreated, response(snap, &stats))
}

// LoadFolder walks fsys and stores the result in the local session, replacing any
// previous tree. Visibility choices are reset.
func (h *TreeHandler) LoadFolder(fsys mfs.FileSystem) (session.Snapshot, error) {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	start := time.Now()
	records, err := walker.Walk(fsys, "", h.cfg.WalkOptions())
	if err != nil {
		return session.Snapshot{}, err
	}
	forest, _ := h.build(nil, "folder", records, h.cfg.TreeOptions(), start)

	snap, err := h.store.Rebuild(LocalSessionID, forest)
	if errors.Is(err, session.ErrNotFound) {
		snap = h.store.CreatePinned(LocalSessionID, forest, "folder")
		err = nil
	}
	if err != nil {
		return session.Snapshot{}, err
	}
	if h.ws != nil {
		h.ws.PushText(snap.ID, snap.Text)
	}
	return snap, nil
}

// GetSession returns the tree, text and hidden paths of a session
func (h *TreeHandler) GetSession(c *gin.Context) {
	snap, err := h.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response(snap, nil))
}

// GetText returns the plain-text diagram of a session
func (h *TreeHandler) GetText(c *gin.Context) {
	text, err := h.store.Text(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// UpdateVisibility shows, hides or toggles one node of a session
func (h *TreeHandler) UpdateVisibility(c *gin.Context) {
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is required",
		})
		return
	}

	id := c.Param("id")
	var (
		snap    session.Snapshot
		visible bool
		err     error
	)
	if req.Visible == nil {
		visible, snap, err = h.store.Toggle(id, req.Path)
	} else {
		visible = *req.Visible
		snap, err = h.store.SetVisible(id, req.Path, visible)
	}
	if err != nil {
		metrics.RecordToggle("rejected")
		writeError(c, err)
		return
	}

	if visible {
		metrics.RecordToggle("shown")
	} else {
		metrics.RecordToggle("hidden")
	}
	if h.ws != nil {
		h.ws.PushText(snap.ID, snap.Text)
	}

	c.JSON(http.StatusOK, gin.H{
		"path":    req.Path,
		"visible": visible,
		"text":    snap.Text,
		"hidden":  snap.Hidden,
	})
}

// DeleteSession drops a session
func (h *TreeHandler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if id == LocalSessionID {
		c.JSON(http.StatusConflict, gin.H{"error": "the local folder session cannot be deleted"})
		return
	}
	if err := h.store.Delete(id); err != nil {
		writeError(c, err)
		return
	}
	metrics.SetSessionsActive(h.store.Len())
	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

// GetSettings returns the build settings the page starts from
func (h *TreeHandler) GetSettings(c *gin.Context) {
	localSession := ""
	if _, err := h.store.Get(LocalSessionID); err == nil {
		localSession = LocalSessionID
	}
	c.JSON(http.StatusOK, gin.H{
		"maxDepth":       h.cfg.MaxDepth,
		"excludeFolders": h.cfg.Exclude,
		"rootLabel":      h.cfg.RootLabel,
		"skipFolders":    h.cfg.Skip,
		"localSession":   localSession,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, tree.ErrNodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "node not found"})
	case errors.Is(err, tree.ErrRootLocked):
		c.JSON(http.StatusConflict, gin.H{"error": "the root folder cannot be hidden"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func response(snap session.Snapshot, stats *tree.Stats) TreeResponse {
	hidden := snap.Hidden
	if hidden == nil {
		hidden = []string{}
	}
	return TreeResponse{
		ID:     snap.ID,
		Source: snap.Source,
		Tree:   toView(snap.Forest, snap),
		Text:   snap.Text,
		Hidden: hidden,
		Stats:  stats,
	}
}

func toView(nodes []*tree.Node, snap session.Snapshot) []*TreeNode {
	views := make([]*TreeNode, 0, len(nodes))
	for _, n := range nodes {
		v := &TreeNode{
			Name:         n.Name,
			Type:         n.Kind,
			Path:         n.Path,
			Size:         n.Size,
			LastModified: n.LastModified,
			Visible:      snap.IsVisible(n.Path),
		}
		if n.Size != nil {
			v.SizeText = tree.FormatFileSize(*n.Size)
		}
		if n.IsDir() {
			v.Children = toView(n.Children, snap)
		}
		views = append(views, v)
	}
	return views
}
