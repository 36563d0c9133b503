package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

// handleExportConversation renders the conversation transcript as a
// Markdown document, or as HTML when format=html is requested.
func (s *Server) handleExportConversation(c *gin.Context) {
	conversation := s.loadOwnedConversation(c)
	if conversation == nil {
		return
	}

	messages, err := s.messages.ListByConversation(c.Request.Context(), conversation.ID)
	if err != nil {
		s.logger.Error("export: message list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	doc := renderTranscript(conversation, messages)

	switch c.DefaultQuery("format", "markdown") {
	case "html":
		p := parser.NewWithExtensions(parser.CommonExtensions)
		renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
		rendered := markdown.ToHTML([]byte(doc), p, renderer)
		c.Data(http.StatusOK, "text/html; charset=utf-8", rendered)
	case "markdown":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", conversation.ID+".md"))
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown export format"})
	}
}

func renderTranscript(conversation *domain.Conversation, messages []*domain.Message) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", conversation.Title)
	fmt.Fprintf(&sb, "Exported %d messages.\n\n", len(messages))

	for _, message := range messages {
		var speaker string
		switch message.Role {
		case domain.RoleUser:
			speaker = "User"
		case domain.RoleAssistant:
			speaker = "Assistant"
		case domain.RoleTool:
			speaker = fmt.Sprintf("Tool (%s)", message.ToolName)
		default:
			speaker = "System"
		}
		fmt.Fprintf(&sb, "## %s\n\n", speaker)
		fmt.Fprintf(&sb, "_%s_\n\n", message.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
		fmt.Fprintf(&sb, "%s\n\n", message.Content)
	}

	return sb.String()
}
