// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "uuid4":
		return err.Field() + " must be a valid UUID"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

func validationErrors(err error) []string {
	var messages []string
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range errs {
			messages = append(messages, getValidationErrorMessage(fieldErr))
		}
	} else {
		messages = append(messages, err.Error())
	}
	return messages
}

// accountRole returns the role resolved by the auth middleware
func accountRole(c fiber.Ctx) string {
	role, _ := c.Locals("account_role").(string)
	return role
}

// accountID returns the database id resolved by the auth middleware
func accountID(c fiber.Ctx) uint {
	id, _ := c.Locals("account_id").(uint)
	return id
}
