package validation

import (
	"errors"
	"fmt"
	"strings"

	"cinecove/internal/core/models"

	"github.com/go-playground/validator/v10"
)

// ValidatePatch checks a partial media item update. Title, type and status may
// be omitted but never nulled. A type/provider mismatch is only detected when
// both appear in the same patch.
func ValidatePatch(p models.MediaItemPatch) error {
	var out Errors

	switch {
	case p.Title.IsNull():
		out = append(out, FieldError{Field: "title", Tag: "required", Message: "title is required"})
	case p.Title.Value != nil && strings.TrimSpace(*p.Title.Value) == "":
		out = append(out, FieldError{Field: "title", Tag: "notblank", Message: "title must not be blank"})
	}

	if p.Type.IsNull() {
		out = append(out, FieldError{Field: "type", Tag: "required", Message: "type is required"})
	} else if p.Type.Value != nil {
		out = append(out, checkVar("type", string(*p.Type.Value), "oneof=movie tv anime")...)
	}

	if p.Status.IsNull() {
		out = append(out, FieldError{Field: "status", Tag: "required", Message: "status is required"})
	} else if p.Status.Value != nil {
		out = append(out, checkVar("status", string(*p.Status.Value), "oneof=watching completed planned")...)
	}

	if p.TMDBID.Value != nil && p.JikanID.Value != nil {
		out = append(out, FieldError{Field: "jikanId", Tag: "excluded_with", Message: "jikanId cannot be combined with tmdbId"})
	} else if p.Type.Value != nil && knownType(*p.Type.Value) {
		ref := models.RefFromIDs(p.TMDBID.Value, p.JikanID.Value)
		if !ref.CompatibleWith(*p.Type.Value) {
			field := "jikanId"
			if ref.Kind() == models.ExternalTMDB {
				field = "tmdbId"
			}
			out = append(out, FieldError{Field: field, Tag: "ref_type", Message: field + " does not match the media type"})
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func checkVar(field, value, tag string) Errors {
	err := GetValidator().Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return Field(field, "unknown", err.Error())
	}
	out := make(Errors, len(validationErrs))
	for i, fe := range validationErrs {
		out[i] = FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Message: fmt.Sprintf("%s must be one of: %s", field, fe.Param()),
		}
	}
	return out
}
