package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/service"
	"github.com/BuzzLyutic/task-dashboard/internal/view"
	"github.com/BuzzLyutic/task-dashboard/pkg/respond"
)

// ErrNoGeneration rejects a display id sent without the load it came from.
var ErrNoGeneration = errors.New("display id needs the load generation: send N@generation or If-Match")

type TaskHandler struct {
	registry *service.Registry
	logger   *zap.Logger
}

func NewTaskHandler(registry *service.Registry, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		registry: registry,
		logger:   logger,
	}
}

func (h *TaskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r)
	q, err := parseQuery(r, e.Lifecycle())
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeState(w, r, http.StatusOK, e.State(q))
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := engineFrom(r).Stats()
	respond.JSON(w, r, http.StatusOK, map[string]any{
		"stats": stats,
		"total": view.Total(stats),
	})
}

func (h *TaskHandler) Reload(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r)
	h.finish(w, r, e, http.StatusOK, e.Load(r.Context()))
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.Record
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	e := engineFrom(r)
	handle, err := e.Create(r.Context(), req)
	if err == nil {
		w.Header().Set("Location", "/api/tasks/"+handle)
	}
	h.finish(w, r, e, http.StatusCreated, err)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Fields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	e := engineFrom(r)
	handle, err := h.resolve(r, e)
	if err == nil {
		err = e.Update(r.Context(), handle, req)
	}
	h.finish(w, r, e, http.StatusOK, err)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r)
	handle, err := h.resolve(r, e)
	if err == nil {
		err = e.Delete(r.Context(), handle)
	}
	h.finish(w, r, e, http.StatusOK, err)
}

func (h *TaskHandler) Advance(w http.ResponseWriter, r *http.Request) {
	e := engineFrom(r)
	handle, err := h.resolve(r, e)
	if err == nil {
		err = e.Advance(r.Context(), handle)
	}
	h.finish(w, r, e, http.StatusOK, err)
}

func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	e := engineFrom(r)
	handle, err := h.resolve(r, e)
	if err == nil {
		err = e.SetStatus(r.Context(), handle, req.Status)
	}
	h.finish(w, r, e, http.StatusOK, err)
}

func (h *TaskHandler) SetPriority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Priority model.Priority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	e := engineFrom(r)
	handle, err := h.resolve(r, e)
	if err == nil {
		err = e.SetPriority(r.Context(), handle, req.Priority)
	}
	h.finish(w, r, e, http.StatusOK, err)
}

// resolve turns the {ref} path segment into a handle. Anything that is not a
// display id is taken as a handle. A display id ("N" or "#N") is only valid
// with the generation of the load that produced it, given as "N@G" or as an
// If-Match header carrying the dashboard's ETag.
func (h *TaskHandler) resolve(r *http.Request, e *service.Engine) (string, error) {
	ref := chi.URLParam(r, "ref")
	idPart, genPart, hasGen := strings.Cut(strings.TrimPrefix(ref, "#"), "@")
	n, err := strconv.Atoi(idPart)
	if err != nil {
		return ref, nil
	}
	if !hasGen {
		genPart = strings.Trim(strings.TrimPrefix(r.Header.Get("If-Match"), "W/"), `"`)
	}
	gen, err := strconv.ParseUint(genPart, 10, 64)
	if err != nil {
		return "", ErrNoGeneration
	}
	return e.Resolve(n, gen)
}

// finish writes the dashboard state after a mutation, or the error with the
// unchanged state.
func (h *TaskHandler) finish(w http.ResponseWriter, r *http.Request, e *service.Engine, code int, err error) {
	q, qerr := parseQuery(r, e.Lifecycle())
	if qerr != nil {
		q = view.Query{Order: view.OrderAsc}
	}
	if err != nil {
		h.handleErrors(w, r, e, err, e.State(q))
		return
	}
	writeState(w, r, code, e.State(q))
}

// writeState sends the state with its load generation as the ETag, the value
// clients echo back when they address tasks by display id.
func writeState(w http.ResponseWriter, r *http.Request, code int, state service.State) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatUint(state.Generation, 10)))
	respond.JSON(w, r, code, state)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, e *service.Engine, err error, state service.State) {
	kind := service.KindOf(err)
	switch {
	case errors.Is(err, ErrNoGeneration):
		respond.Fail(w, r, http.StatusPreconditionRequired, "", err.Error(), state)
	case errors.Is(err, service.ErrTaskNotFound):
		respond.Fail(w, r, http.StatusNotFound, kind, "task not found", state)
	case errors.Is(err, service.ErrValidation):
		respond.Fail(w, r, http.StatusBadRequest, kind, err.Error(), state)
	default:
		h.logger.Error("remote store error",
			zap.String("uid", e.Identity().UID),
			zap.String("kind", kind),
			zap.Error(err),
		)
		respond.Fail(w, r, http.StatusBadGateway, kind, err.Error(), state)
	}
}

func parseQuery(r *http.Request, lifecycle model.Lifecycle) (view.Query, error) {
	v := r.URL.Query()
	order, err := view.ParseOrder(v.Get("order"))
	if err != nil {
		return view.Query{}, err
	}
	partition := model.Status(v.Get("partition"))
	if partition != "" && !lifecycle.Allows(partition) {
		return view.Query{}, fmt.Errorf("unknown partition %q", partition)
	}
	return view.Query{Partition: partition, Text: v.Get("q"), Order: order}, nil
}
