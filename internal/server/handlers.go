package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/codegraph/pkg/controller"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
)

// GraphResponse is the body of every graph-returning route and the data of
// "graph" websocket messages.
type GraphResponse struct {
	State   controller.State   `json:"state"`
	Error   *ErrorBody         `json:"error,omitempty"`
	Filters controller.Filters `json:"filters"`
	Query   string             `json:"query"`
	Layout  string             `json:"layout"`
	Graph   graph.RenderGraph  `json:"graph"`
}

// ErrorBody describes a failed request or a controller in the Error state.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type layoutRequest struct {
	Layout string `json:"layout"`
}

type clickResponse struct {
	Expanded bool          `json:"expanded"`
	Graph    GraphResponse `json:"graph"`
}

type positionsResponse struct {
	Updated int `json:"updated"`
}

// snapshot captures the controller's current state. Fields are read one at
// a time, so a concurrent event may land between them; the next "graph"
// message corrects any mismatch.
func (s *Server) snapshot() GraphResponse {
	resp := GraphResponse{
		State:   s.ctrl.State(),
		Filters: s.ctrl.Filters(),
		Query:   s.ctrl.Query(),
		Layout:  string(s.ctrl.Strategy()),
		Graph:   s.ctrl.Render(),
	}
	if err := s.ctrl.Err(); err != nil {
		resp.Error = errorBody(err)
	}
	return resp
}

// detached keeps the request's values but not its cancellation: the
// controller is shared, so a client hanging up must not abort its work.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var f controller.Filters
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ctrl.SetFilters(detached(r), f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	var err error
	if r.URL.Query().Get("refresh") == "true" {
		err = s.ctrl.Refresh(detached(r))
	} else {
		err = s.ctrl.Retry(detached(r))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.ctrl.Search(req.Query)
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ctrl.SetLayout(detached(r), req.Layout); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	expanded := s.ctrl.ClickNode(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, clickResponse{Expanded: expanded, Graph: s.snapshot()})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	n, err := s.reportPositions(data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionsResponse{Updated: n})
}

// reportPositions applies a settled render graph posted by a renderer.
func (s *Server) reportPositions(data []byte) (int, error) {
	rg, err := graph.UnmarshalRender(data)
	if err != nil {
		return 0, err
	}
	pos := rg.Positions()
	s.sim.Report(pos)
	return s.ctrl.UpdatePositions(pos), nil
}

// clientMessage is a frame sent by a renderer over the websocket.
type clientMessage struct {
	Type   string          `json:"type"`
	Query  string          `json:"query,omitempty"`
	Layout string          `json:"layout,omitempty"`
	ID     string          `json:"id,omitempty"`
	Graph  json.RawMessage `json:"graph,omitempty"`
}

// handleMessage routes websocket frames to the same controller operations
// as the HTTP API. Filter changes are HTTP only since they block on a fetch.
func (s *Server) handleMessage(c *Client, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Send(MsgError, errorBody(cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "decode message")))
		return
	}

	var err error
	switch msg.Type {
	case "search":
		s.ctrl.Search(msg.Query)
	case "layout":
		err = s.ctrl.SetLayout(context.Background(), msg.Layout)
	case "click":
		s.ctrl.ClickNode(msg.ID)
	case MsgPositions:
		_, err = s.reportPositions(msg.Graph)
	default:
		err = cgerrors.New(cgerrors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
	}
	if err != nil {
		s.logger.Debug("websocket message rejected", "client", c.ID(), "type", msg.Type, "error", err)
		c.Send(MsgError, errorBody(err))
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]*ErrorBody{"error": errorBody(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, controller.ErrSuperseded), errors.Is(err, controller.ErrNoFilters):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return cgerrors.HTTPStatus(err)
	}
}

func errorBody(err error) *ErrorBody {
	code := string(cgerrors.GetCode(err))
	switch {
	case errors.Is(err, controller.ErrSuperseded):
		code = "SUPERSEDED"
	case errors.Is(err, controller.ErrNoFilters):
		code = "NOTHING_LOADED"
	case code == "":
		code = string(cgerrors.ErrCodeInternal)
	}
	return &ErrorBody{Code: code, Message: cgerrors.UserMessage(err)}
}
