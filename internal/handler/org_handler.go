package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"league-platform/internal/middleware"
	"league-platform/internal/model"
	"league-platform/internal/rbac"
	"league-platform/pkg/apierror"
)

type leagueLister interface {
	ListAccessible(ctx context.Context, access rbac.AccessSet) ([]model.League, error)
}

type clubStore interface {
	rbac.ClubLeagueLookup
	FindByID(ctx context.Context, id int64) (model.Club, error)
}

type OrgHandler struct {
	leagues leagueLister
	clubs   clubStore
}

func NewOrgHandler(leagues leagueLister, clubs clubStore) *OrgHandler {
	return &OrgHandler{leagues: leagues, clubs: clubs}
}

func (h *OrgHandler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	leagues, err := h.leagues.ListAccessible(r.Context(), session.Evaluator.AccessibleLeagueIDs())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.LeagueListData{Items: leagues}, nil)
}

// GetClub checks access before loading, so unknown and forbidden clubs look
// the same to callers without access.
func (h *OrgHandler) GetClub(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	clubID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || clubID <= 0 {
		writeError(w, apierror.BadRequest("invalid club id", chi.URLParam(r, "id")))
		return
	}

	allowed := session.Evaluator.CanAccessClub(clubID)
	if !allowed {
		allowed, err = session.Evaluator.CanAccessLeagueOfClub(r.Context(), h.clubs, clubID)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	if !allowed {
		writeError(w, model.ErrForbidden)
		return
	}

	club, err := h.clubs.FindByID(r.Context(), clubID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, club, nil)
}
