package position

import "github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"

type CreatePositionRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

func (r *CreatePositionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "Position title is required",
		})
	} else if len(r.Title) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 100 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PositionResponse struct {
	ID          int64   `json:"position_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}
