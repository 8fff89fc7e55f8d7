package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// apologyResponse mirrors the canned fallback of the assistant when the
// model cannot be reached.
const apologyResponse = "Sorry, I am having trouble connecting to my brain right now. Please try again later."

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Response string `json:"response"`
	Lang     string `json:"lang"`
}

type API struct {
	gen         Generator
	kb          *KnowledgeBase
	allowOrigin string
	log         *zap.Logger
}

func NewAPI(gen Generator, kb *KnowledgeBase, allowOrigin string, log *zap.Logger) *API {
	return &API{gen: gen, kb: kb, allowOrigin: allowOrigin, log: log}
}

func (a *API) setCORS(w http.ResponseWriter) {
	if a.allowOrigin == "" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", a.allowOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleChat serves POST /chat with {"query": "..."} and answers with
// {"response": "...", "lang": "en"|"ml"}.
func (a *API) HandleChat(w http.ResponseWriter, r *http.Request) {
	a.setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		http.Error(w, `{"error":"No query provided"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	raw, err := a.gen.Generate(ctx, BuildPrompt(a.kb.Context(), req.Query))
	if err != nil {
		a.log.Warn("generation failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse{Response: apologyResponse, Lang: "en"})
		return
	}

	text, lang := SplitLangTag(raw)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chatResponse{Response: text, Lang: lang})
}
