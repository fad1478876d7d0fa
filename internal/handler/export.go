package handler

import (
	"net/http"

	"github.com/ALiangTech/treeify/internal/markdown"
	"github.com/ALiangTech/treeify/internal/session"
	"github.com/gin-gonic/gin"
)

// ExportHandler renders session diagrams as documentation snippets
type ExportHandler struct {
	store  *session.Store
	parser *markdown.Parser
}

// NewExportHandler creates a new export handler
func NewExportHandler(store *session.Store) *ExportHandler {
	return &ExportHandler{
		store:  store,
		parser: markdown.NewParser(),
	}
}

// GetMarkdown returns the session's diagram as Markdown and rendered HTML, headed by
// the name of the first root. ?title= overrides the heading; an empty value drops it.
func (h *ExportHandler) GetMarkdown(c *gin.Context) {
	snap, err := h.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	title, ok := c.GetQuery("title")
	if !ok && len(snap.Forest) > 0 {
		title = snap.Forest[0].Name
	}

	snippet, err := h.parser.Snippet(title, snap.Text)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to render markdown: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, snippet)
}

// GetRaw returns the Markdown snippet alone
func (h *ExportHandler) GetRaw(c *gin.Context) {
	snap, err := h.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var title string
	if len(snap.Forest) > 0 {
		title = snap.Forest[0].Name
	}
	snippet, err := h.parser.Snippet(title, snap.Text)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(snippet.Markdown))
}
