package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"newsly/internal/email"
	"newsly/internal/prefs"
	"newsly/internal/store"

	"github.com/go-chi/chi/v5"
)

// Health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := s.store.Ping(r.Context()); err != nil {
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}

	checks["database"] = "ok"

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// handleListUsers handles GET /api/users
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.log.Error("Failed to list users", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	s.respondJSON(w, http.StatusOK, users)
}

// CreateUserRequest is the body for POST /api/users
type CreateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// handleCreateUser handles POST /api/users. New users start with the
// default preference spec.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		s.respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	spec, err := prefs.Default().Encode()
	if err != nil {
		s.log.Error("Failed to encode default spec", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Email, req.Name, spec)
	if err != nil {
		s.log.Error("Failed to create user", "error", err, "email", req.Email)
		s.respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.respondJSON(w, http.StatusCreated, user)
}

// UpdateUserRequest is the body for PUT /api/users/{id}
type UpdateUserRequest struct {
	Spec *string `json:"spec"`
	Name *string `json:"name"`
}

// handleUpdateUser handles PUT /api/users/{id}
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Spec != nil && !json.Valid([]byte(*req.Spec)) {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON in spec")
		return
	}

	user, err := s.store.UpdateUser(r.Context(), id, req.Spec, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error("Failed to update user", "error", err, "user_id", id)
		s.respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

// handleDeleteUser handles DELETE /api/users/{id}
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error("Failed to delete user", "error", err, "user_id", id)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// SendNewsletterRequest is the body for /api/send-newsletter and
// /api/preview-newsletter
type SendNewsletterRequest struct {
	UserID string `json:"userId"`
}

// handleSendNewsletter handles POST /api/send-newsletter: generate a digest
// for the user, persist it, and deliver it. Delivery failures are logged but
// do not fail the request; the digest is still recorded.
func (s *Server) handleSendNewsletter(w http.ResponseWriter, r *http.Request) {
	var req SendNewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	user, err := s.store.GetUser(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error("Failed to load user", "error", err, "user_id", req.UserID)
		s.respondError(w, http.StatusInternalServerError, "Failed to send newsletter")
		return
	}

	content, err := s.pipeline.Generate(r.Context(), user.Spec)
	if err != nil {
		s.log.Error("Failed to generate newsletter", "error", err, "user_id", user.ID)
		s.respondError(w, http.StatusInternalServerError, "Failed to send newsletter")
		return
	}

	saved, err := s.store.SaveNewsletter(r.Context(), user.ID, content)
	if err != nil {
		s.log.Error("Failed to save newsletter", "error", err, "user_id", user.ID)
		s.respondError(w, http.StatusInternalServerError, "Failed to send newsletter")
		return
	}

	if err := s.mailer.SendNewsletter(user.Email, content); err != nil {
		s.log.Error("Failed to deliver newsletter", "error", err, "user_id", user.ID, "email", user.Email)
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":    "Newsletter sent successfully",
		"newsletter": saved,
	})
}

// handlePreviewNewsletter handles POST /api/preview-newsletter: generate a
// digest for the user without persisting or sending it.
func (s *Server) handlePreviewNewsletter(w http.ResponseWriter, r *http.Request) {
	var req SendNewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUser(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		s.log.Error("Failed to load user", "error", err, "user_id", req.UserID)
		s.respondError(w, http.StatusInternalServerError, "Failed to generate preview")
		return
	}

	content, err := s.pipeline.Generate(r.Context(), user.Spec)
	if err != nil {
		s.log.Error("Failed to generate preview", "error", err, "user_id", user.ID)
		s.respondError(w, http.StatusInternalServerError, "Failed to generate preview")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"subject": content.Subject,
		"content": content.Content,
		"user": map[string]string{
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// handleNewsletterHistory handles GET /api/newsletter-history. With a
// userId query parameter it returns that user's newsletters; without one
// it returns recent newsletters across all users.
func (s *Server) handleNewsletterHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	if userID != "" {
		newsletters, err := s.store.ListNewslettersByUser(r.Context(), userID)
		if err != nil {
			s.log.Error("Failed to fetch newsletter history", "error", err, "user_id", userID)
			s.respondError(w, http.StatusInternalServerError, "Failed to fetch newsletter history")
			return
		}
		s.respondJSON(w, http.StatusOK, newsletters)
		return
	}

	newsletters, err := s.store.ListNewsletters(r.Context())
	if err != nil {
		s.log.Error("Failed to fetch newsletter history", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch newsletter history")
		return
	}
	s.respondJSON(w, http.StatusOK, newsletters)
}

// fallbackReply is sent when the agent cannot produce a response.
const fallbackReply = "Thanks for your message! I'm having trouble processing responses right now, but I appreciate your engagement with the newsletter. Please try again later or feel free to reach out directly."

// EmailReplyRequest is the webhook body for POST /api/email-reply. Field
// names follow the common inbound-email webhook shape.
type EmailReplyRequest struct {
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
	MessageID string `json:"messageId"`
}

// handleEmailReplyInfo handles GET /api/email-reply
func (s *Server) handleEmailReplyInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message":      "Email reply webhook endpoint is active",
		"instructions": "Configure your email service to POST incoming emails to this endpoint",
	})
}

// handleEmailReply handles POST /api/email-reply: clean the incoming reply,
// ask the agent for a response, and mail it back to the sender.
func (s *Server) handleEmailReply(w http.ResponseWriter, r *http.Request) {
	var req EmailReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	body := req.Text
	if body == "" && req.HTML != "" {
		extracted, err := email.HTMLToText(req.HTML)
		if err != nil {
			s.log.Warn("Failed to extract text from HTML reply", "error", err)
		} else {
			body = extracted
		}
	}

	if req.From == "" || body == "" {
		s.respondError(w, http.StatusBadRequest, "Missing required email fields")
		return
	}

	s.log.Info("Received email reply", "from", req.From, "subject", req.Subject)

	cleaned := email.CleanReply(body)
	if cleaned == "" {
		s.respondJSON(w, http.StatusOK, map[string]string{
			"message": "Email processed but no content to respond to",
		})
		return
	}

	response := fallbackReply
	if reply, err := s.agent.Chat(r.Context(), replyPrompt(cleaned)); err != nil {
		s.log.Error("Failed to get agent response", "error", err, "from", req.From)
	} else {
		response = reply
	}

	emailSent := false
	subject := req.Subject
	if subject == "" {
		subject = "Newsletter Discussion"
	}
	if !strings.HasPrefix(subject, "Re: ") {
		subject = "Re: " + subject
	}
	if err := s.mailer.SendReply(req.From, subject, response); err != nil {
		s.log.Error("Failed to send reply email", "error", err, "from", req.From)
	} else {
		emailSent = true
	}

	message := "Email reply processed and response sent"
	if !emailSent {
		message = "Email reply processed (email sending failed)"
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":        message,
		"from":           req.From,
		"responseLength": len(response),
		"emailSent":      emailSent,
	})
}

// replyPrompt frames a cleaned reply for the agent.
func replyPrompt(content string) string {
	return `You are an AI assistant helping with tech newsletter discussions. A user has replied to a newsletter with the following message:

"` + content + `"

Please provide a thoughtful, engaging response that:
1. Addresses their specific points or questions
2. Provides additional insights about the tech topics mentioned
3. Encourages further discussion
4. Keeps the tone conversational and friendly
5. Limits the response to 2-3 paragraphs

Response:`
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
