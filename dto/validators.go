package dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/terragrow/storefront/models"
)

// RegisterValidators adds the custom binding tags used by the DTOs and makes
// field errors report JSON names.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		return models.Unit(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		_, err := bson.ObjectIDFromHex(fl.Field().String())
		return err == nil
	})
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
