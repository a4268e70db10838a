package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernamePattern = regexp.MustCompile("^[a-zA-Z0-9_]{3,50}$")
)

// GetValidator 获取验证器实例
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("username", validateUsername)
	})
	return validate
}

// validateUsername 用户名只能包含字母、数字和下划线，长度3-50
func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// ValidateStruct 验证结构体
func ValidateStruct(s interface{}) error {
	if err := GetValidator().Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s是必填字段", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s长度不能小于%s", field, e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s长度不能大于%s", field, e.Param()))
		case "username":
			messages = append(messages, fmt.Sprintf("%s只能包含字母、数字和下划线，长度3-50", field))
		default:
			messages = append(messages, fmt.Sprintf("%s验证失败: %s", field, e.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
