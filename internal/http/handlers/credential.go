package handlers

import (
	"encoding/json"
	"net/http"

	"masterpiece/internal/gate"
)

type credentialStatus struct {
	Ready bool `json:"ready"`
}

type selectCredentialRequest struct {
	APIKey string `json:"api_key"`
}

// CredentialStatus re-reads readiness from the host.
func (a *App) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, credentialStatus{Ready: a.Studio.Mount(r.Context())})
}

// CredentialSelect runs the host selection flow. The body is optional; an
// empty key counts as a dismissed dialog.
func (a *App) CredentialSelect(w http.ResponseWriter, r *http.Request) {
	var req selectCredentialRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}
	ctx := gate.WithSubmittedKey(r.Context(), req.APIKey)
	if err := a.Studio.ConnectKey(ctx); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, credentialStatus{Ready: true})
}
