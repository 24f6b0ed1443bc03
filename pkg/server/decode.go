package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON body into dst and runs its validation rules.
// Every failure is reported as a validation error.
func DecodeJSON(req *http.Request, dst any) error {
	if req.Body == nil {
		return apperr.Validation(errors.New("request body is required"))
	}
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation(errors.New("request body is required"))
		}
		return apperr.Validation(err)
	}
	if v, ok := dst.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			return apperr.Validation(err)
		}
	}
	return nil
}
