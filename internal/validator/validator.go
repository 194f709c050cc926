// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// maxTelegramID bounds chat and user ids; Telegram guarantees they fit in 52 bits.
const maxTelegramID = 1<<52 - 1

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("telegram_chat_id", validateTelegramChatID)
		_ = v.RegisterValidation("telegram_user_id", validateTelegramUserID)
		_ = v.RegisterValidation("bot_status", validateBotStatus)
	}
}

// ParseTelegramID parses a chat or user id given as a decimal string.
func ParseTelegramID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !ValidChatID(id) {
		return 0, false
	}
	return id, true
}

// ValidChatID reports whether id could be a Telegram chat id.
func ValidChatID(id int64) bool {
	return id != 0 && id >= -maxTelegramID && id <= maxTelegramID
}

func validateTelegramChatID(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int64:
		return ValidChatID(fl.Field().Int())
	case reflect.String:
		_, ok := ParseTelegramID(fl.Field().String())
		return ok
	}
	return false
}

func validateTelegramUserID(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int64:
		id := fl.Field().Int()
		return id > 0 && id <= maxTelegramID
	}
	return false
}

func validateBotStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "connected", "inactive", "migration_needed":
		return true
	}
	return false
}
