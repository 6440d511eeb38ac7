package api

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aidigest/app/database"
	"aidigest/app/signature"
)

type ActionRepository interface {
	Record(action database.Action) (int64, error)
	ListRecent(limit int) ([]database.Action, error)
}

var _ ActionRepository = (*database.ActionRepository)(nil)

type Handler struct {
	actionRepo ActionRepository
	secretKey  string
}

func NewHandler(actionRepo ActionRepository, secretKey string) *Handler {
	return &Handler{actionRepo: actionRepo, secretKey: secretKey}
}

// GetAction handles the signed /star and /note links embedded in
// digest emails. The action name comes from the request path.
func (h *Handler) GetAction(c *gin.Context) {
	action := strings.TrimPrefix(c.Request.URL.Path, "/")

	contentID := c.Query("id")
	date := c.Query("date")
	sig := c.Query("t")

	if contentID == "" || date == "" || sig == "" {
		c.String(http.StatusBadRequest, "Missing required parameters")
		return
	}

	if !signature.Verify(contentID, date, sig, h.secretKey) {
		slog.Warn("Invalid action signature", "action", action, "id", contentID, "date", date)
		c.String(http.StatusForbidden, "Invalid or expired link")
		return
	}

	record := database.Action{
		Action:      action,
		ContentID:   contentID,
		Title:       c.Query("title"),
		URL:         c.Query("url"),
		ContentType: c.Query("type"),
		ContentDate: date,
		Note:        c.Query("note"),
	}

	id, err := h.actionRepo.Record(record)
	if err != nil {
		slog.Error("Database error", "operation", "record_action", "action", action, "error", err)
		c.String(http.StatusInternalServerError, "Failed to save")
		return
	}

	slog.Info("Action recorded", "action", action, "id", id, "content_id", contentID)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, confirmationPage(action, record.Title))
}

func confirmationPage(action, title string) string {
	icon := "⭐"
	message := "已收藏"
	if action == "note" {
		icon = "📝"
		message = "已记录"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="zh">
<head><meta charset="UTF-8"><title>AI Digest</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 80px;">
<div style="font-size: 48px;">%s</div>
<h2>%s</h2>
<p style="color: #586069;">%s</p>
<p style="color: #6a737d; font-size: 13px;">可以关闭此页面了。</p>
</body>
</html>`, icon, message, html.EscapeString(title))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListActions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	actions, err := h.actionRepo.ListRecent(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_actions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list actions"})
		return
	}

	list := make([]map[string]interface{}, 0, len(actions))
	for _, a := range actions {
		list = append(list, map[string]interface{}{
			"id":           a.ID,
			"action":       a.Action,
			"content_id":   a.ContentID,
			"title":        a.Title,
			"url":          a.URL,
			"content_type": a.ContentType,
			"content_date": a.ContentDate,
			"note":         a.Note,
			"created_at":   a.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(list),
		"actions": list,
	})
}
