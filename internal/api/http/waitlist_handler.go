package http

import (
	"net/http"
	"strconv"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/registry"
	"appsuite-backend/internal/service"

	"github.com/gorilla/mux"
)

type WaitlistHandler struct {
	svc service.WaitlistService
}

func NewWaitlistHandler(svc service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{svc: svc}
}

func (h *WaitlistHandler) Routes() []registry.Route {
	return []registry.Route{
		{Name: "waitlist.join", Method: http.MethodPost, Path: "/join", Handler: h.Join, Limited: true,
			Description: "Add an email to the waitlist and send a welcome email"},
		{Name: "waitlist.all", Method: http.MethodGet, Path: "/all", Handler: h.List, Protected: true,
			Description: "Get all waitlist entries with optional filtering"},
		{Name: "waitlist.invite", Method: http.MethodPost, Path: "/invite/{id:[0-9]+}", Handler: h.Invite, Protected: true,
			Description: "Send invitation message to user on waitlist"},
		{Name: "waitlist.mark_joined", Method: http.MethodPut, Path: "/mark-joined/{id:[0-9]+}", Handler: h.MarkJoined, Protected: true,
			Description: "Mark a waitlist user as joined"},
		{Name: "waitlist.remove", Method: http.MethodDelete, Path: "/remove/{id:[0-9]+}", Handler: h.Remove, Protected: true,
			Description: "Remove user from waitlist"},
		{Name: "waitlist.stats", Method: http.MethodGet, Path: "/stats", Handler: h.Stats, Protected: true,
			Description: "Get waitlist statistics"},
		{Name: "waitlist.notifications", Method: http.MethodGet, Path: "/notifications", Handler: h.Notifications, Protected: true,
			Description: "List queued, sent and failed notification emails"},
	}
}

type joinRequest struct {
	Email string `json:"email"`
}

type inviteRequest struct {
	Message string `json:"message"`
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Join(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Successfully added to waitlist",
		"email":        res.Entry.Email,
		"id":           res.Entry.ID,
		"status":       res.Entry.Status,
		"notification": res.Notification,
	})
}

func (h *WaitlistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.WaitlistEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":    len(entries),
		"waitlist": entries,
	})
}

func (h *WaitlistHandler) Invite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Invite(r.Context(), id, req.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeTransition(w, inviteMessages[res.Notification], res)
}

func (h *WaitlistHandler) MarkJoined(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.MarkJoined(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeTransition(w, "User marked as joined", res)
}

func (h *WaitlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.Remove(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "User removed from waitlist",
		"user_email": entry.Email,
	})
}

func (h *WaitlistHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *WaitlistHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotifications(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":         len(notes),
		"notifications": notes,
	})
}

var inviteMessages = map[service.NotificationOutcome]string{
	service.NotificationSent:   "Invitation sent successfully",
	service.NotificationQueued: "User invited; invitation email queued for delivery",
	service.NotificationFailed: "User invited; invitation email could not be sent or queued",
}

func writeTransition(w http.ResponseWriter, msg string, res *service.Transition) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      msg,
		"user_email":   res.Entry.Email,
		"status":       res.Entry.Status,
		"notification": res.Notification,
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
