// Package login provides the JSON authentication endpoints: login, logout
// and the current-session profile used by the SPA to gate its routes.
package login

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	"github.com/siga-admin/siga/internal/db/models"
	"github.com/siga-admin/siga/internal/web/handler"
	"github.com/siga-admin/siga/internal/web/session"
)

const (
	// Path is the path to the login endpoint.
	Path = handler.APIPath + "/login"
	// LogoutPath is the path to the logout endpoint.
	LogoutPath = handler.APIPath + "/logout"
	// MePath is the path to the current-session profile endpoint.
	MePath = handler.APIPath + "/me"
)

// credentials is the login request body.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// profile is the current-session response body.
type profile struct {
	ID                   uint64                     `json:"id"`
	Username             string                     `json:"username"`
	FullName             string                     `json:"full_name"`
	Email                string                     `json:"email"`
	HomeUnitID           uint                       `json:"home_unit_id"`
	MustChangePassword   bool                       `json:"must_change_password"`
	EffectivePermissions []auth.EffectivePermission `json:"effective_permissions"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Post(Path, s.Login)
	app.Post(LogoutPath, s.Logout)
	app.Get(MePath, s.Me)
}

// Login authenticates the credentials and opens a session.
func (s *Service) Login(c *fiber.Ctx) error {
	creds := new(credentials)

	if err := c.BodyParser(creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var dbUser models.User
	if err := s.db.Where("username = ?", creds.Username).First(&dbUser).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	if !dbUser.Active {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account is disabled"})
	}

	if !dbUser.VerifyPassword(creds.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	userSession := &session.Data{User: dbUser}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	cookie := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookie.Secure = false
	}

	c.Cookie(cookie)

	return c.JSON(fiber.Map{
		"username":             dbUser.Username,
		"must_change_password": dbUser.MustChangePassword,
	})
}

// Logout clears the session.
func (s *Service) Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(session.CookieName)
	if sessionID != "" {
		if err := session.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// Me returns the authenticated user's profile together with every
// (resource, action, scope unit) grant, so the SPA can gate buttons and
// routes without issuing one check per element.
func (s *Service) Me(c *fiber.Ctx) error {
	user, err := auth.SessionUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	perms, err := s.authService.ListEffectivePermissions(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to list effective permissions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(profile{
		ID:                   user.ID,
		Username:             user.Username,
		FullName:             user.FullName,
		Email:                user.Email,
		HomeUnitID:           user.HomeUnitID,
		MustChangePassword:   user.MustChangePassword,
		EffectivePermissions: perms,
	})
}
