// internal/handlers/validators.go
package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/centmarde/Eco-Barangay/internal/models"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("garbagetype", func(fl validator.FieldLevel) bool {
			return models.IsValidGarbageType(fl.Field().String())
		})
	}
}
