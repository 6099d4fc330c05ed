// Package validation checks request bodies with go-playground/validator and
// reports failures per JSON field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"cinecove/internal/core/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Errors collects every failed rule of one request.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e))
	for i, fe := range e {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// Field builds a single-entry Errors, used by callers that detect a problem
// outside of struct tags (for example a JSON type mismatch).
func Field(field, tag, message string) Errors {
	return Errors{{Field: field, Tag: tag, Message: message}}
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(jsonName)

		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		_ = validate.RegisterValidation("maxbytes", maxBytes)

		validate.RegisterStructValidation(externalRefRule,
			models.CreateMediaItemRequest{},
			models.CreateUpcomingReleaseRequest{},
			models.AdminPickFields{},
		)
	})
	return validate
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// JSONPath rewrites a dotted path of Go field names within v's type, as
// decoders report it, into the JSON names a client sent. Embedded structs
// drop out of the path and segments that cannot be resolved are kept.
func JSONPath(v any, goPath string) string {
	t := reflect.TypeOf(v)
	segments := strings.Split(goPath, ".")
	out := make([]string, 0, len(segments))
	for i, seg := range segments {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			return strings.Join(append(out, segments[i:]...), ".")
		}
		fld, ok := t.FieldByName(seg)
		if !ok {
			return strings.Join(append(out, segments[i:]...), ".")
		}
		switch name := jsonName(fld); {
		case name != "":
			out = append(out, name)
		case !fld.Anonymous:
			out = append(out, seg)
		}
		t = fld.Type
	}
	return strings.Join(out, ".")
}

// ValidateStruct returns nil or an Errors value describing every failing field.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}
	return translate(err)
}

func translate(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}
	out := make(Errors, len(validationErrs))
	for i, fe := range validationErrs {
		out[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: translateError(fe)}
	}
	return out
}

var errorMessageTemplates = map[string]string{
	"required":      "%s is required",
	"notblank":      "%s must not be blank",
	"datetime":      "%s must be a date in YYYY-MM-DD format",
	"excluded_with": "%s cannot be combined with tmdbId",
	"ref_type":      "%s does not match the media type",
}

var errorMessageWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"min":      "%s must be at least %s characters",
	"maxbytes": "%s must be at most %s bytes",
}

// maxBytes limits the UTF-8 length of a string; "max" counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// externalRefRule enforces the external reference union on create bodies:
// at most one provider id, and the provider must serve the entry's type.
func externalRefRule(sl validator.StructLevel) {
	var (
		mediaType       models.MediaType
		tmdbID, jikanID *int
	)
	switch r := sl.Current().Interface().(type) {
	case models.CreateMediaItemRequest:
		mediaType, tmdbID, jikanID = r.Type, r.TMDBID, r.JikanID
	case models.CreateUpcomingReleaseRequest:
		mediaType, tmdbID, jikanID = r.Type, r.TMDBID, r.JikanID
	case models.AdminPickFields:
		mediaType, tmdbID, jikanID = r.Type, r.TMDBID, r.JikanID
	default:
		return
	}
	reportRef(sl, mediaType, tmdbID, jikanID)
}

func reportRef(sl validator.StructLevel, mediaType models.MediaType, tmdbID, jikanID *int) {
	if tmdbID != nil && jikanID != nil {
		sl.ReportError(*jikanID, "jikanId", "JikanID", "excluded_with", "tmdbId")
		return
	}
	if !knownType(mediaType) {
		return
	}
	ref := models.RefFromIDs(tmdbID, jikanID)
	if ref.CompatibleWith(mediaType) {
		return
	}
	if ref.Kind() == models.ExternalTMDB {
		sl.ReportError(*tmdbID, "tmdbId", "TMDBID", "ref_type", string(mediaType))
	} else {
		sl.ReportError(*jikanID, "jikanId", "JikanID", "ref_type", string(mediaType))
	}
}

func knownType(t models.MediaType) bool {
	switch t {
	case models.MediaTypeMovie, models.MediaTypeTV, models.MediaTypeAnime:
		return true
	}
	return false
}
