package binder

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// dateLayouts are the ISO 8601 forms accepted for date fields.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// dateValidator ensures the value is an ISO 8601 date or the empty string.
// The empty string is allowed so that optional dates can be left blank; pair
// it with `required` when a value must be given.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := ParseDate(value)
	return err == nil
}

// ParseDate parses a value accepted by the date validator. The empty string
// parses to nil.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return &t, nil
		}
	}
	return nil, errors.Errorf("invalid date %q", value)
}

// Escape replaces the characters that are unsafe in HTML with entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// NormalizeList turns a missing multi-valued field into an empty list.
func NormalizeList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func escapeModifier(_ context.Context, fl mold.FieldLevel) error {
	field := fl.Field()
	if field.Kind() != reflect.String || !field.CanSet() {
		return nil
	}
	field.SetString(Escape(field.String()))
	return nil
}

func listModifier(_ context.Context, fl mold.FieldLevel) error {
	field := fl.Field()
	if field.Kind() != reflect.Slice || !field.IsNil() || !field.CanSet() {
		return nil
	}
	field.Set(reflect.MakeSlice(field.Type(), 0, 0))
	return nil
}
