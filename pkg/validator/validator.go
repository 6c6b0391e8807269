// Package validator registers custom binding validators on gin's engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JoeLeDev/RSs/internal/models"
)

// Init wires the custom validators into gin's request binding. Call once at
// startup, before the router handles traffic.
func Init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("objectid", validObjectID)
	v.RegisterValidation("notiftype", validNotificationType)
	v.RegisterValidation("grouprole", validGroupRole)
}

// validObjectID accepts a 24-char hex Mongo object id.
func validObjectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

func validNotificationType(fl validator.FieldLevel) bool {
	return models.ValidNotificationType(fl.Field().String())
}

func validGroupRole(fl validator.FieldLevel) bool {
	return models.GroupRole(fl.Field().String()).IsValid()
}
