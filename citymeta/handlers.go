package citymeta

import (
	"context"
	"net/http"
	"time"

	"wayfare/apperr"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	resolver *Resolver
}

func NewHandlers(resolver *Resolver) *Handlers {
	return &Handlers{resolver: resolver}
}

// GET /api/cities/:city
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	meta, err := h.resolver.Resolve(ctx, ps.ByName("city"))
	if err != nil {
		if apperr.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, meta)
}
