package http

import (
	"net/http"

	roleuc "expense-approval/internal/usecase/role"

	"github.com/labstack/echo/v4"
)

type RoleHandler struct{ uc *roleuc.Usecase }

func NewRoleHandler(uc *roleuc.Usecase) *RoleHandler { return &RoleHandler{uc: uc} }

type createRoleReq struct {
	Name        string `json:"name"         validate:"required,max=64"`
	DisplayName string `json:"display_name" validate:"max=128"`
	IsApprover  bool   `json:"is_approver"`
}

type updateRoleReq struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=128"`
	IsApprover  *bool   `json:"is_approver"`
}

func (h *RoleHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	list, err := h.uc.List(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": list, "count": len(list)})
}

func (h *RoleHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req createRoleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Create(c.Request().Context(), actor, roleuc.CreateInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RoleHandler) Update(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Update(c.Request().Context(), actor, c.Param("id"), roleuc.UpdateInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RoleHandler) Delete(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
