package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/siga-admin/siga/internal/db/models"
	"github.com/siga-admin/siga/internal/web/session"
)

// UnitResolver extracts the target unit of a scoped permission check from
// the request.
type UnitResolver func(c *fiber.Ctx) (uint, error)

// UnitFromParam resolves the target unit from a numeric route parameter.
func UnitFromParam(name string) UnitResolver {
	return func(c *fiber.Ctx) (uint, error) {
		id, err := strconv.ParseUint(c.Params(name), 10, 32)
		if err != nil || id == 0 {
			return 0, ErrNoTargetUnit
		}

		return uint(id), nil
	}
}

// UnitFromQuery resolves the target unit from a numeric query parameter.
func UnitFromQuery(name string) UnitResolver {
	return func(c *fiber.Ctx) (uint, error) {
		id := c.QueryInt(name, 0)
		if id <= 0 {
			return 0, ErrNoTargetUnit
		}

		return uint(id), nil
	}
}

// SessionUser reads the authenticated user from the request's session cookie.
func SessionUser(c *fiber.Ctx) (*models.User, error) {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return nil, ErrUnauthenticated
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil {
		return nil, ErrUnauthenticated
	}

	if sessData.User.ID == 0 {
		return nil, ErrUnauthenticated
	}

	return &sessData.User, nil
}

// RequireForUnit creates Fiber middleware that requires the (resource,
// action) permission scoped to the unit the resolver extracts from the
// request. Absence of any matching grant denies the request.
func RequireForUnit(svc *Service, resource Resource, action Action, resolve UnitResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := SessionUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		targetUnitID, err := resolve(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing target unit"})
		}

		granted, err := svc.CheckPermission(user.ID, resource, action, targetUnitID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).
				Str("resource", string(resource)).Str("action", string(action)).
				Uint("target_unit", targetUnitID).
				Msg("failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		if !granted {
			log.Warn().Uint64("user_id", user.ID).
				Str("resource", string(resource)).Str("action", string(action)).
				Uint("target_unit", targetUnitID).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		return c.Next()
	}
}

// RequireAnywhere creates Fiber middleware that requires the (resource,
// action) permission under at least one scope. Used for catalog-level
// operations that have no single target unit; handlers that later resolve a
// concrete unit re-check against it.
func RequireAnywhere(svc *Service, resource Resource, action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := SessionUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		granted, err := svc.HasPermissionAnywhere(user.ID, resource, action)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).
				Str("resource", string(resource)).Str("action", string(action)).
				Msg("failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		if !granted {
			log.Warn().Uint64("user_id", user.ID).
				Str("resource", string(resource)).Str("action", string(action)).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		return c.Next()
	}
}

// CheckForUnit is the in-handler variant of RequireForUnit for routes where
// the target unit only becomes known after loading the entity. It returns
// ErrUnauthenticated or ErrForbidden when the request must stop; callers map
// those onto HTTP statuses.
func CheckForUnit(c *fiber.Ctx, svc *Service, resource Resource, action Action, targetUnitID uint) error {
	user, err := SessionUser(c)
	if err != nil {
		return ErrUnauthenticated
	}

	granted, err := svc.CheckPermission(user.ID, resource, action, targetUnitID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).
			Str("resource", string(resource)).Str("action", string(action)).
			Uint("target_unit", targetUnitID).
			Msg("failed to check permission")

		return err
	}

	if !granted {
		log.Warn().Uint64("user_id", user.ID).
			Str("resource", string(resource)).Str("action", string(action)).
			Uint("target_unit", targetUnitID).
			Msg("user lacks required permission")

		return ErrForbidden
	}

	return nil
}
