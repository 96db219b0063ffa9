package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// RequireSupervisor ensures the caller holds the SUPERVISOR role.
func RequireSupervisor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Operator == nil {
			return apperrors.NewUnauthorized("operator required")
		}
		if !principal.Operator.IsSupervisor() {
			return apperrors.NewForbidden("supervisor role required")
		}
		return c.Next()
	}
}

// RequireOperator ensures any authenticated operator is present.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if OperatorFromContext(c) == nil {
			return apperrors.NewUnauthorized("operator required")
		}
		return c.Next()
	}
}
