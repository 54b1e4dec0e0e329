package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ProfAvery/flowy-servers/application/commands"
	"github.com/ProfAvery/flowy-servers/application/commands/bus"
	"github.com/ProfAvery/flowy-servers/application/queries"
	querybus "github.com/ProfAvery/flowy-servers/application/queries/bus"
	"github.com/ProfAvery/flowy-servers/domain/core/valueobjects"
	pkgerrors "github.com/ProfAvery/flowy-servers/pkg/errors"
	"github.com/ProfAvery/flowy-servers/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured
const DefaultMaxBodyBytes int64 = 1 << 20

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	maxBodyBytes int64,
	logger *zap.Logger,
) *NodeHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &NodeHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// UpsertNodeRequest represents the request body for POST /set
type UpsertNodeRequest struct {
	ID        string            `json:"id" validate:"required"`
	Text      *string           `json:"text" validate:"required"`
	Checked   valueobjects.Flag `json:"checked"`
	Pinned    valueobjects.Flag `json:"pinned"`
	Collapsed valueobjects.Flag `json:"collapsed"`
	Children  []*string         `json:"children" validate:"required,dive,required"`
}

// childIDs dereferences the validated children. Empty strings are kept; only
// null elements are rejected.
func (req UpsertNodeRequest) childIDs() []string {
	ids := make([]string, len(req.Children))
	for i, child := range req.Children {
		ids[i] = *child
	}
	return ids
}

// OKResponse is returned by every successful write
type OKResponse struct {
	OK bool `json:"ok"`
}

// SetNode handles POST /set
func (h *NodeHandler) SetNode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req UpsertNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, decodeError(err))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewMalformedInputError(err.Error()).WithCode(codeValidation))
		return
	}

	cmd := commands.UpsertNodeCommand{
		NodeID:    req.ID,
		Text:      req.Text,
		Checked:   req.Checked.Bool(),
		Pinned:    req.Pinned.Bool(),
		Collapsed: req.Collapsed.Bool(),
		Children:  req.childIDs(),
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, OKResponse{OK: true})
}

// GetNode handles GET /{id}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{NodeID: id})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	node, ok := result.(*queries.GetNodeResult)
	if !ok {
		h.errorHandler.Handle(w, r, pkgerrors.NewInternalError(fmt.Sprintf("unexpected query result %T", result)))
		return
	}

	h.respondJSON(w, http.StatusOK, node)
}

// DeleteNode handles DELETE /{id}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.commandBus.Send(r.Context(), commands.DeleteNodeCommand{NodeID: id}); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, OKResponse{OK: true})
}

// pathID returns the unescaped {id} route parameter. chi matches against
// the raw path when the request carried escapes such as %2F.
func pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			return "", pkgerrors.NewMalformedInputError("invalid node id encoding")
		}
		id = unescaped
	}
	return id, nil
}

// Codes refining MALFORMED_INPUT
const (
	codeBodyTooLarge   = "BODY_TOO_LARGE"
	codeWrongFieldType = "WRONG_FIELD_TYPE"
	codeInvalidJSON    = "INVALID_JSON"
	codeInvalidBody    = "INVALID_BODY"
	codeValidation     = "VALIDATION_FAILED"
)

func decodeError(err error) error {
	var maxBytes *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &maxBytes):
		return pkgerrors.NewMalformedInputError(fmt.Sprintf("request body exceeds %d bytes", maxBytes.Limit)).
			WithCode(codeBodyTooLarge)
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return pkgerrors.NewMalformedInputError(fmt.Sprintf("%s has the wrong type", typeErr.Field)).
				WithCode(codeWrongFieldType).
				WithDetails(map[string]interface{}{"field": typeErr.Field})
		}
		return pkgerrors.NewMalformedInputError("request body must be a JSON object").WithCode(codeInvalidBody)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return pkgerrors.NewMalformedInputError("request body is not valid JSON").WithCode(codeInvalidJSON)
	default:
		return pkgerrors.NewMalformedInputError("invalid request body: " + err.Error()).WithCode(codeInvalidBody)
	}
}

func (h *NodeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
