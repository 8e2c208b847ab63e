package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// CapacityErrorResponse is returned when a booking asks for more units than
// the slot has left. Available tells the caller how many units it could
// still get.
type CapacityErrorResponse struct {
	Error     string `json:"error" example:"only 2 of 5 requested units available"`
	Available int    `json:"available" example:"2"`
	Requested int    `json:"requested" example:"5"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
