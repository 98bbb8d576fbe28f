package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type BannerResponse struct {
	URL string `json:"url"`
}

// DraftSaveResponse reports whether a forced draft save wrote anything.
type DraftSaveResponse struct {
	Saved bool `json:"saved"`
	Form  any  `json:"form"`
}
