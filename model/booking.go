package model

type BookingResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
