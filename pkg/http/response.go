package http

import (
	"encoding/json"
	"net/http"

	apperrors "deskbook/pkg/errors"
	"deskbook/pkg/model"
)

type BookingResponse struct {
	Status  string         `json:"status"`
	Booking *model.Booking `json:"booking"`
}

type BookingsResponse struct {
	Status   string           `json:"status"`
	Count    int              `json:"count"`
	Bookings []*model.Booking `json:"bookings"`
}

type DesksResponse struct {
	Status string        `json:"status"`
	Count  int           `json:"count"`
	Desks  []*model.Desk `json:"desks"`
}

type AvailabilityResponse struct {
	Status    string `json:"status"`
	DeskID    int64  `json:"deskId"`
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err error) {
	apperrors.WriteError(w, err)
}

func WriteBooking(w http.ResponseWriter, statusCode int, b *model.Booking) error {
	return WriteJSON(w, statusCode, BookingResponse{Status: apperrors.StatusSuccess, Booking: b})
}

// WriteBookings never renders a null list.
func WriteBookings(w http.ResponseWriter, bookings []*model.Booking) error {
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return WriteJSON(w, http.StatusOK, BookingsResponse{
		Status:   apperrors.StatusSuccess,
		Count:    len(bookings),
		Bookings: bookings,
	})
}

func WriteDesks(w http.ResponseWriter, desks []*model.Desk) error {
	if desks == nil {
		desks = []*model.Desk{}
	}
	return WriteJSON(w, http.StatusOK, DesksResponse{
		Status: apperrors.StatusSuccess,
		Count:  len(desks),
		Desks:  desks,
	})
}

func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, MessageResponse{Status: apperrors.StatusSuccess, Message: message})
}
