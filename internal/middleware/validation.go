package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/oppe-api/internal/model"
)

// RegisterValidators installs domain validators on gin's binding engine.
// Boundary validation rejects out-of-range input before it reaches the
// evaluation core.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("physicianrole", func(fl validator.FieldLevel) bool {
		switch model.PhysicianRole(fl.Field().String()) {
		case model.RolePhysician, model.RolePeerReviewer, model.RoleDepartmentHead, model.RoleAdministrator:
			return true
		}
		return false
	})
}
