// Package validation checks pipeline requests before any file is touched.
//
// Struct tags (go-playground/validator) cover most requests:
//
//	type SilenceRequest struct {
//	    Input  string  `json:"input" validate:"required,file"`
//	    MinGap float64 `json:"min_gap" validate:"gte=0"`
//	}
//	err := validation.Validate(req)
//
// Besides the built-in tags, "timestamp" accepts SS, MM:SS or HH:MM:SS and
// "color" accepts a colour name or hex value.
//
// Cross-field rules use the programmatic Validator:
//
//	v := validation.New()
//	v.Custom(end > start, "end", "must be after start")
//	err := v.Error()
//
// Failures are INVALID_INPUT errors whose "field" detail names the first
// offending field and whose "fields" detail lists all of them.
package validation
