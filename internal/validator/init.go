package validator

import (
	"ctchen222/tictactoe-solo/internal/game"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("difficulty", validateDifficulty); err != nil {
		panic(err)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// validateDifficulty accepts the names of the supported difficulty levels.
func validateDifficulty(fl validator.FieldLevel) bool {
	_, err := game.ParseDifficulty(fl.Field().String())
	return err == nil
}
