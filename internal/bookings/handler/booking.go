package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/internal/bookings/service"
	"deskbook/internal/bookings/validator"
	apperrors "deskbook/pkg/errors"
	httputil "deskbook/pkg/http"
	"deskbook/pkg/logger"
	"deskbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, validator *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	appErr := toAppError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.log.Error("request failed", "handler", handler, "error", err)
	}
	httputil.WriteError(w, appErr)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", decodeError(err))
		return
	}
	if err := h.validator.ValidateRequest(&req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.AddBooking(r.Context(), req.DeskID, req.UserID, req.DateFrom, req.DateTo)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteBooking(w, http.StatusCreated, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteBooking", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteBooking(w, http.StatusOK, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteBooking", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := h.service.CancelBooking(r.Context(), id); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, "booking cancelled"); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) ListDesks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var filter model.DeskFilter
	building, ok, err := httputil.QueryInt(r, "building_id")
	if err != nil {
		h.writeError(w, "ListDesks", err)
		return
	}
	if ok {
		filter.BuildingID = int64(building)
	}
	floor, ok, err := httputil.QueryInt(r, "floor")
	if err != nil {
		h.writeError(w, "ListDesks", err)
		return
	}
	if ok {
		filter.Floor = &floor
	}

	desks, err := h.service.ListDesks(r.Context(), filter)
	if err != nil {
		h.writeError(w, "ListDesks", err)
		return
	}

	if err := httputil.WriteDesks(w, desks); err != nil {
		h.log.Error("failed to write success response", "handler", "ListDesks", "operation", "WriteDesks", "error", err)
	}
}

// DeskBookings picks its view from the query: date= gives the bookings
// covering that day, from=&to= the overlapping ones, from= alone the upcoming
// ones and no parameter every booking of the desk.
func (h *BookingHandler) DeskBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	deskID, err := httputil.PathID(ps, "id")
	if err != nil {
		h.writeError(w, "DeskBookings", err)
		return
	}

	query := r.URL.Query()
	date, from, to := query.Get("date"), query.Get("from"), query.Get("to")

	var bookings []*model.Booking
	switch {
	case date != "":
		bookings, err = h.service.BookingsOn(r.Context(), deskID, date)
	case from != "" && to != "":
		bookings, err = h.service.BookingsOverlapping(r.Context(), deskID, from, to)
	case from != "":
		bookings, err = h.service.UpcomingForDesk(r.Context(), deskID, from)
	case to != "":
		err = apperrors.InvalidInput("to parameter requires from")
	default:
		bookings, err = h.service.ListForDesk(r.Context(), deskID)
	}
	if err != nil {
		h.writeError(w, "DeskBookings", err)
		return
	}

	if err := httputil.WriteBookings(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "DeskBookings", "operation", "WriteBookings", "error", err)
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	deskID, err := httputil.PathID(ps, "id")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	date := r.URL.Query().Get("date")

	available, err := h.service.IsAvailableOn(r.Context(), deskID, date)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, httputil.AvailabilityResponse{
		Status:    apperrors.StatusSuccess,
		DeskID:    deskID,
		Date:      date,
		Available: available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteJSON", "error", err)
	}
}

func (h *BookingHandler) UserBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := httputil.PathID(ps, "id")
	if err != nil {
		h.writeError(w, "UserBookings", err)
		return
	}

	bookings, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, "UserBookings", err)
		return
	}

	if err := httputil.WriteBookings(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "UserBookings", "operation", "WriteBookings", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.DELETE("/api/v1/bookings/:id", h.Cancel)

	router.GET("/api/v1/desks", h.ListDesks)
	router.GET("/api/v1/desks/:id/bookings", h.DeskBookings)
	router.GET("/api/v1/desks/:id/availability", h.Availability)

	router.GET("/api/v1/users/:id/bookings", h.UserBookings)
}

func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.TooLarge(int(maxErr.Limit))
	}
	return apperrors.BadRequest("Invalid request body")
}

// toAppError maps booking outcomes onto transport errors. Anything the
// mapping does not know becomes a 500.
func toAppError(err error) *apperrors.AppError {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, bookingserrors.ErrInvalidDateFormat):
		appErr := apperrors.InvalidDateFormat(bookingserrors.ErrInvalidDateFormat.Error(), err)
		if errors.As(err, &verrs) {
			appErr = appErr.WithDetails(map[string]any{"errors": verrs})
		}
		return appErr
	case errors.Is(err, bookingserrors.ErrInvalidDateRange):
		return apperrors.InvalidDateRange(err.Error(), err)
	case errors.Is(err, bookingserrors.ErrDateInPast):
		return apperrors.DateInPast(err.Error(), err)
	case errors.Is(err, bookingserrors.ErrDeskNotFound):
		return apperrors.DeskNotFound(err.Error(), err)
	case errors.Is(err, bookingserrors.ErrBookingNotFound):
		return apperrors.BookingNotFound(err.Error(), err)
	case errors.Is(err, bookingserrors.ErrDeskAlreadyBooked):
		return apperrors.DeskAlreadyBooked(err.Error(), err)
	case errors.Is(err, bookingserrors.ErrDeskBusy):
		return apperrors.DeskBusy(bookingserrors.ErrDeskBusy.Error(), err)
	case errors.As(err, &verrs):
		return apperrors.Validation("Invalid booking request", map[string]any{"errors": verrs})
	case errors.Is(err, bookingserrors.ErrPersistenceFailure):
		return apperrors.Internal("Failed to access booking storage", err)
	}
	return apperrors.AsAppError(err)
}
