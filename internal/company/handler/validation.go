package handler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]{6,20}$`)

// fieldMessages maps "<json field>.<tag>" to the message reported to the client.
var fieldMessages = map[string]string{
	"arabicName.required":      "Company Arabic Name is required",
	"arabicName.max":           "Company Arabic Name cannot exceed 200 characters",
	"englishName.required":     "Company English Name is required",
	"englishName.max":          "Company English Name cannot exceed 200 characters",
	"email.required":           "Email is required",
	"email.email":              "Invalid email format",
	"email.max":                "Email cannot exceed 100 characters",
	"phoneNumber.phone":        "Invalid phone number format",
	"phoneNumber.max":          "Phone number cannot exceed 20 characters",
	"websiteUrl.url":           "Invalid website URL format",
	"websiteUrl.max":           "Website URL cannot exceed 500 characters",
	"otpCode.required":         "OTP code is required",
	"otpCode.len":              "OTP must be exactly 6 characters",
	"newPassword.required":     "New Password is required",
	"confirmPassword.required": "Confirm Password is required",
	"password.required":        "Password is required",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{f.Tag.Get("json"), f.Tag.Get("form")} {
			if name := strings.SplitN(tag, ",", 2)[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// validationMessages runs v over req and returns every violation as a client message.
func validationMessages(v *validator.Validate, req interface{}) []string {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if m, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			msgs = append(msgs, m)
			continue
		}
		msgs = append(msgs, fe.Field()+" is invalid")
	}
	return msgs
}
