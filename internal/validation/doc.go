// Package validation wraps go-playground/validator with a shared validator instance
// and error messages suited to API responses.
//
// Struct tags use the JSON field names in messages, so a failing `singers` field
// reports "singers list cannot be empty" rather than the Go field name.
//
//	type SongInput struct {
//	    Name    string   `json:"name" validate:"required"`
//	    Singers []string `json:"singers" validate:"required,min=1,dive,required"`
//	}
//
//	if err := validation.ValidateStruct(&in); err != nil {
//	    // err.Error() == "singers list cannot be empty"
//	}
package validation
