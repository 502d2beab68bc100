package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/verdantlabs/menu-match/internal/database"
	"github.com/verdantlabs/menu-match/internal/models"
)

// aliasKindFromParam maps the :kind route segment onto an alias table.
func aliasKindFromParam(param string) (database.AliasKind, bool) {
	switch param {
	case "vendor":
		return database.AliasKindVendor, true
	case "strain":
		return database.AliasKindStrain, true
	default:
		return "", false
	}
}

// ListAliasGroups returns every alias group of a kind
func (h *Handler) ListAliasGroups(c *fiber.Ctx) error {
	kind, ok := aliasKindFromParam(c.Params("kind"))
	if !ok {
		return Error(c, fiber.StatusBadRequest, "alias kind must be 'vendor' or 'strain'")
	}

	groups, err := h.db.ListAliasGroups(c.Context(), kind)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list alias groups")
	}
	if groups == nil {
		groups = []*models.VendorAliasGroup{}
	}

	return Success(c, groups)
}

// CreateAliasGroup creates an alias group and rebuilds the index so new
// aliases take effect immediately.
func (h *Handler) CreateAliasGroup(c *fiber.Ctx) error {
	kind, ok := aliasKindFromParam(c.Params("kind"))
	if !ok {
		return Error(c, fiber.StatusBadRequest, "alias kind must be 'vendor' or 'strain'")
	}

	var req models.CreateAliasGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.db.CreateAliasGroup(c.Context(), kind, req.Names)
	if err != nil {
		if errors.Is(err, database.ErrAliasGroupTooSmall) {
			return Error(c, fiber.StatusBadRequest, "alias group needs at least two names")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to create alias group")
	}

	if _, err := h.matcher.Reload(c.Context()); err != nil {
		return Error(c, fiber.StatusInternalServerError, "alias group saved but index rebuild failed")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{Success: true, Data: group})
}

// DeleteAliasGroup removes an alias group and rebuilds the index
func (h *Handler) DeleteAliasGroup(c *fiber.Ctx) error {
	kind, ok := aliasKindFromParam(c.Params("kind"))
	if !ok {
		return Error(c, fiber.StatusBadRequest, "alias kind must be 'vendor' or 'strain'")
	}

	groupID, err := strconv.Atoi(c.Params("group_id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if err := h.db.DeleteAliasGroup(c.Context(), kind, groupID); err != nil {
		if errors.Is(err, database.ErrAliasGroupNotFound) {
			return Error(c, fiber.StatusNotFound, "alias group not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete alias group")
	}

	if _, err := h.matcher.Reload(c.Context()); err != nil {
		return Error(c, fiber.StatusInternalServerError, "alias group deleted but index rebuild failed")
	}

	return Success(c, fiber.Map{"deleted": groupID})
}
