package http

import (
	"net/http"
	"strings"

	domuser "example.com/user-admin/internal/domain/user"
)

// updateUserRequest accepts a partial or a full user. An id in the body is ignored.
type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	filter := domuser.ListUsersFilter{Query: r.URL.Query().Get("q")}
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err := domuser.ParseRole(raw)
		if err != nil {
			a.handleDomainError(w, err)
			return
		}
		filter.Role = &role
	}

	users, err := a.userSvc.ListUsers(r.Context(), filter)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	resp := make([]domuser.User, 0, len(users))
	for _, u := range users {
		resp = append(resp, *u)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	u, err := a.userSvc.GetUser(r.Context(), id)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in domuser.Candidate
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	in = in.Normalize()
	in.Role = domuser.Role(strings.TrimSpace(string(in.Role)))
	if err := in.Validate(); err != nil {
		a.handleDomainError(w, err)
		return
	}

	u, err := a.userSvc.CreateUser(r.Context(), in)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	a.logger.Info("user created", "id", u.ID, "role", u.Role)
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	patch := domuser.Patch{Name: req.Name, Email: req.Email}
	if req.Role != nil {
		role, err := domuser.ParseRole(*req.Role)
		if err != nil {
			a.handleDomainError(w, err)
			return
		}
		patch.Role = &role
	}
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		a.handleDomainError(w, err)
		return
	}

	u, err := a.userSvc.UpdateUser(r.Context(), id, patch)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	a.logger.Info("user updated", "id", u.ID)
	writeJSON(w, http.StatusOK, u)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.userSvc.DeleteUser(r.Context(), id); err != nil {
		a.handleDomainError(w, err)
		return
	}
	a.logger.Info("user deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{})
}
