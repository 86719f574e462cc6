package handlers

import (
	"encoding/json"
	"net/http"

	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"

	"go.uber.org/zap"
)

type AccountHandler struct {
	accounts AccountService
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	u, err := h.accounts.GetProfile(r.Context(), caller.ID)
	if err != nil {
		handleServiceError(w, err, "get_profile")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	u, err := h.accounts.UpdateProfile(r.Context(), caller.ID, request.Name, request.Email)
	if err != nil {
		handleServiceError(w, err, "update_profile")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromUser(u))
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to decode JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if request.CurrentPassword == "" {
		responseWithError(w, http.StatusBadRequest, "currentPassword is required")
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), caller.ID, request.CurrentPassword, request.NewPassword); err != nil {
		handleServiceError(w, err, "change_password")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", "password updated successfully"))
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), caller.ID); err != nil {
		handleServiceError(w, err, "delete_account")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", "account deleted successfully"))
}

// callerFromRequest fetches the identity the auth middleware resolved. All
// account and task routes sit behind that middleware, so a miss means a
// wiring mistake, answered as unauthenticated.
func callerFromRequest(w http.ResponseWriter, r *http.Request) (middleware.Caller, bool) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		logger.Warn("HTTP: no caller identity in context",
			zap.String("path", r.URL.Path))
		responseWithError(w, http.StatusUnauthorized, "authentication required")
		return middleware.Caller{}, false
	}
	return caller, true
}
