package http

type (
	// QueryEventRequest struct - HTTP query request DTO for the diagnostics journal
	QueryEventRequest struct {
		Kind *string `json:"kind" form:"kind" query:"kind"`

		Limit   *int    `json:"limit,omitempty" validate:"omitempty,gte=-1,lte=100" form:"limit" query:"limit"`
		Page    *int    `json:"page,omitempty" validate:"omitempty,gte=1,lte=100000" form:"page" query:"page"`
		OrderBy *string `json:"order_by,omitempty" validate:"omitempty,oneof=occurred_at kind" form:"order_by" query:"order_by"`
		Asc     *bool   `json:"asc,omitempty" form:"asc" query:"asc"`
	}
)
