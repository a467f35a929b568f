package http

import (
	"net/http"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/mpl"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/handler/http/response"
)

type MplHandler interface {
	Quota(w http.ResponseWriter, r *http.Request)
	Convert(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Balance(w http.ResponseWriter, r *http.Request)
}

type mplHandlerImpl struct {
	mplService mpl.Service
}

func NewMplHandler(mplService mpl.Service) MplHandler {
	return &mplHandlerImpl{
		mplService: mplService,
	}
}

// targetUserID defaults to the caller when user_id is not given.
func targetUserID(r *http.Request, callerID string) string {
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		return userID
	}
	return callerID
}

// Quota implements MplHandler.
func (h *mplHandlerImpl) Quota(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	req := mpl.QuotaRequest{
		UserID:        targetUserID(r, actor.UserID),
		ReferenceDate: r.URL.Query().Get("reference_date"),
	}

	result, err := h.mplService.Quota(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Convert implements MplHandler.
func (h *mplHandlerImpl) Convert(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req mpl.ConvertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.mplService.Convert(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime converted to MPL", result)
}

// History implements MplHandler.
func (h *mplHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	filter := mpl.HistoryFilter{
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", 20),
	}

	result, err := h.mplService.History(r.Context(), actor, targetUserID(r, actor.UserID), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Balance implements MplHandler.
func (h *mplHandlerImpl) Balance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.mplService.Balance(r.Context(), actor, targetUserID(r, actor.UserID))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
