package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/printshop/internal/command"
	"github.com/example/printshop/internal/domain/issue"
)

// Issue handlers cover the customer-facing side of the issue desk. Admin
// review actions live in admin_handlers.go.

func (h *Handlers) SubmitIssue(w http.ResponseWriter, r *http.Request) {
	var cmd command.SubmitIssue
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.UserID = getUserID(r)

	iss, err := h.cmdHandler.SubmitIssue(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, iss)
}

func (h *Handlers) GetIssues(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	respondJSON(w, http.StatusOK, h.queryHandler.ListIssuesByUser(userID))
}

func (h *Handlers) GetIssue(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	iss, ok := h.queryHandler.GetIssue(id)
	if !ok {
		respondJSONError(w, "Issue not found", http.StatusNotFound)
		return
	}

	if iss.UserID != getUserID(r) && !isAdmin(r) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, iss)
}

func (h *Handlers) GetIssueMessages(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	iss, ok := h.queryHandler.GetIssue(id)
	if !ok {
		respondJSONError(w, "Issue not found", http.StatusNotFound)
		return
	}
	if iss.UserID != getUserID(r) && !isAdmin(r) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, h.queryHandler.ListIssueMessages(id))
}

func (h *Handlers) PostIssueMessage(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	iss, ok := h.queryHandler.GetIssue(id)
	if !ok {
		respondJSONError(w, "Issue not found", http.StatusNotFound)
		return
	}

	sender := issue.SenderCustomer
	if isAdmin(r) {
		sender = issue.SenderAdmin
	} else if iss.UserID != getUserID(r) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Body      string   `json:"body"`
		ImageURLs []string `json:"image_urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := command.PostIssueMessage{
		IssueID:   id,
		Sender:    sender,
		SenderID:  getUserID(r),
		Body:      req.Body,
		ImageURLs: req.ImageURLs,
	}
	msg, err := h.cmdHandler.PostIssueMessage(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// MarkIssueMessagesRead clears the unread counter for the caller's side
func (h *Handlers) MarkIssueMessagesRead(w http.ResponseWriter, r *http.Request) {
	id := issuePathID(r.URL.Path)

	iss, ok := h.queryHandler.GetIssue(id)
	if !ok {
		respondJSONError(w, "Issue not found", http.StatusNotFound)
		return
	}

	side := issue.SenderCustomer
	if isAdmin(r) {
		side = issue.SenderAdmin
	} else if iss.UserID != getUserID(r) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	cmd := command.MarkIssueMessagesRead{IssueID: id, Side: side}
	if err := h.cmdHandler.MarkIssueMessagesRead(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// issuePathID pulls the issue ID out of /issues/{id}[/suffix] paths
func issuePathID(path string) string {
	rest := strings.TrimPrefix(path, "/issues/")
	rest = strings.TrimPrefix(rest, "/admin/issues/")
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
