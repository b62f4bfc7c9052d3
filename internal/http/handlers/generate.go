package handlers

import (
	"encoding/json"
	"net/http"

	"masterpiece/internal/middleware"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type generateRequest struct {
	AspectRatio string `json:"aspect_ratio"`
}

func (a *App) PromptPut(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.Studio.SetPrompt(req.Prompt)
	w.WriteHeader(http.StatusNoContent)
}

// Generate starts a generation and answers with the loading state.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}
	if err := a.Studio.Generate(req.AspectRatio); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, a.Studio.State(middleware.LocaleFromContext(r.Context())))
}

func (a *App) State(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Studio.State(middleware.LocaleFromContext(r.Context())))
}
