package web

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

// Handler serves the HTML pages.
type Handler struct {
	service service.GameService
	assets  *AssetResolver
}

// NewHandler creates the page handler.
func NewHandler(gameService service.GameService, assets *AssetResolver) *Handler {
	if assets == nil {
		assets = NewAssetResolver("")
	}
	return &Handler{service: gameService, assets: assets}
}

// RegisterRoutes mounts the pages on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.home).Methods("GET")
	r.HandleFunc("/play", h.newGame).Methods("POST")
	r.HandleFunc("/play/{id}", h.gamePage).Methods("GET")
	r.HandleFunc("/play/{id}/board", h.boardFragment).Methods("GET")
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		log.Error("Failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	configs, err := h.service.ListConfigs(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sessions, err := h.service.ListSessions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, HomePage(configs, sessions))
}

func (h *Handler) newGame(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	info, err := h.service.CreateSession(r.Context(), r.PostFormValue("config"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/play/"+info.ID, http.StatusSeeOther)
}

func (h *Handler) gamePage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	state, err := h.service.GetGameState(r.Context(), id)
	if err != nil {
		h.notFound(w, r, err)
		return
	}
	render(w, r, GamePage(id, state, h.assets))
}

func (h *Handler) boardFragment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	state, err := h.service.GetGameState(r.Context(), id)
	if err != nil {
		h.notFound(w, r, err)
		return
	}
	render(w, r, Board(id, state, h.assets))
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		http.NotFound(w, r)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
