package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/endpoint"
)

// Handlers contains HTTP handlers for the wizard API
type Handlers struct {
	endpoints endpoint.Endpoints
}

// NewHandlers creates new handlers
func NewHandlers(endpoints endpoint.Endpoints) *Handlers {
	return &Handlers{endpoints: endpoints}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Advance handles POST /api/wizard/advance
func (h *Handlers) Advance(c *gin.Context) {
	var req endpoint.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}
	h.respond(c, h.endpoints.Advance, &req, http.StatusOK)
}

// Steps handles GET /api/wizard/steps
func (h *Handlers) Steps(c *gin.Context) {
	h.respond(c, h.endpoints.Steps, nil, http.StatusOK)
}

// GetDraft handles GET /api/wizard/drafts/:id
func (h *Handlers) GetDraft(c *gin.Context) {
	id, err := int64Param(c.Param("id"), "id")
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, h.endpoints.GetDraft, &endpoint.DraftRequest{ID: id}, http.StatusOK)
}

// ExportUserData handles GET /api/privacy/drafts?owner=&scope=
func (h *Handlers) ExportUserData(c *gin.Context) {
	req, err := privacyRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, h.endpoints.ExportUserData, req, http.StatusOK)
}

// DeleteUserData handles DELETE /api/privacy/drafts?owner=&scope=
func (h *Handlers) DeleteUserData(c *gin.Context) {
	req, err := privacyRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, h.endpoints.DeleteUserData, req, http.StatusOK)
}

// DeleteScope handles DELETE /api/privacy/scopes/:scope
func (h *Handlers) DeleteScope(c *gin.Context) {
	scope, err := int64Param(c.Param("scope"), "scope")
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, h.endpoints.DeleteScope, scope, http.StatusOK)
}

func (h *Handlers) respond(c *gin.Context, ep endpoint.Endpoint, req any, code int) {
	resp, err := ep(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(code, resp)
}

// privacyRequest reads owner and scope from the query. Owner defaults to
// the caller.
func privacyRequest(c *gin.Context) (*endpoint.PrivacyRequest, error) {
	req := &endpoint.PrivacyRequest{}
	if raw := c.Query("owner"); raw != "" {
		owner, err := int64Param(raw, "owner")
		if err != nil {
			return nil, err
		}
		req.Owner = owner
	} else if id, ok := auth.FromContext(c.Request.Context()); ok {
		req.Owner = id.UserID
	} else {
		return nil, domain.ErrUnauthenticated
	}
	if raw := c.Query("scope"); raw != "" {
		scope, err := int64Param(raw, "scope")
		if err != nil {
			return nil, err
		}
		req.Scope = scope
	}
	return req, nil
}

func int64Param(raw, name string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidArgument, name)
	}
	return n, nil
}

// writeError writes err as JSON. Validation failures are written as a
// field-indexed map with status 422.
func writeError(c *gin.Context, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, endpoint.ValidationResponse{Step: ve.Step, Errors: ve.Fields})
		return
	}
	c.JSON(endpoint.HTTPStatus(err), errorResponse{Error: endpoint.PublicMessage(err)})
}
