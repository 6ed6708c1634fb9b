package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// runHandler returns the record of one run as JSON
func runHandler(runs interfaces.RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := model.RunID(chi.URLParam(r, "id"))

		if runs == nil {
			writeError(w, goerr.New("run records are not available", goerr.T(types.ErrTagNotFound)), http.StatusNotFound)
			return
		}

		run, err := runs.GetRun(ctx, id)
		if err != nil {
			errutil.Handle(ctx, "Failed to get run", err)
			writeError(w, goerr.New("failed to get run"), http.StatusInternalServerError)
			return
		}
		if run == nil {
			writeError(w, goerr.New("run not found", goerr.V("run_id", id), goerr.T(types.ErrTagNotFound)), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(run); err != nil {
			ctxlog.From(ctx).Error("Failed to encode run response", "error", err)
		}
	}
}
