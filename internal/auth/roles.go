package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/social-services/pkg/util"
)

const forbiddenMessage = "you do not have permission to perform this action"

// Require rejects requests whose account may not perform action. It only suits actions
// that do not depend on a resource; object-level checks happen in the services.
func Require(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := AccountFromContext(c)
		if !ok && action.Rule != RuleAllowAny {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !IsAllowed(account, action, nil) {
			return apperrors.NewForbidden(forbiddenMessage)
		}
		return c.Next()
	}
}

// RequireVerified ensures the caller is an authenticated, verified account.
func RequireVerified() fiber.Handler {
	return Require(Action{Name: "authenticated", Rule: RuleAuthenticated})
}

// Forbidden is the error returned for every failed authorization check. The message never
// reveals which rule failed.
func Forbidden() error {
	return apperrors.NewForbidden(forbiddenMessage)
}
