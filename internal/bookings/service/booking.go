package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "deskbook/internal/bookings/errors"
	"deskbook/internal/bookings/events"
	"deskbook/internal/bookings/policy"
	"deskbook/internal/bookings/repository"
	"deskbook/internal/bookings/validator"
	"deskbook/pkg/logger"
	"deskbook/pkg/model"
)

type BookingService interface {
	AddBooking(ctx context.Context, deskID, userID int64, dateFrom, dateTo string) (*model.Booking, error)
	CancelBooking(ctx context.Context, id int64) error
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)

	IsAvailableOn(ctx context.Context, deskID int64, date string) (bool, error)
	BookingsOn(ctx context.Context, deskID int64, date string) ([]*model.Booking, error)
	BookingsOverlapping(ctx context.Context, deskID int64, dateFrom, dateTo string) ([]*model.Booking, error)
	UpcomingForDesk(ctx context.Context, deskID int64, from string) ([]*model.Booking, error)
	ListForDesk(ctx context.Context, deskID int64) ([]*model.Booking, error)
	ListForUser(ctx context.Context, userID int64) ([]*model.Booking, error)
	ListDesks(ctx context.Context, filter model.DeskFilter) ([]*model.Desk, error)
}

type Option func(*bookingService)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *bookingService) { s.now = now }
}

// WithLocation sets the zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(s *bookingService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *bookingService) {
		if p != nil {
			s.publisher = p
		}
	}
}

type bookingService struct {
	repo      repository.BookingRepository
	desks     repository.DeskRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	log       *logger.Logger
	now       func() time.Time
	loc       *time.Location
}

func NewBookingService(
	repo repository.BookingRepository,
	desks repository.DeskRepository,
	validator *validator.BookingValidator,
	log *logger.Logger,
	opts ...Option,
) BookingService {
	s := &bookingService{
		repo:      repo,
		desks:     desks,
		validator: validator,
		publisher: events.NewNoopPublisher(),
		log:       log,
		now:       time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingService) today() time.Time {
	return model.DateOf(s.now().In(s.loc))
}

func (s *bookingService) AddBooking(ctx context.Context, deskID, userID int64, dateFrom, dateTo string) (*model.Booking, error) {
	dates, err := s.parseRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	if dates.From.Before(s.today()) {
		return nil, fmt.Errorf("%w: %s is before %s", bookingserrors.ErrDateInPast, model.FormatDate(dates.From), model.FormatDate(s.today()))
	}
	if err := s.requireDesk(ctx, deskID); err != nil {
		return nil, err
	}

	booking := &model.Booking{DeskID: deskID, UserID: userID, Dates: dates}
	err = s.repo.InsertIfAdmissible(ctx, booking, func(existing []*model.Booking) error {
		if conflict := policy.FirstConflict(existing, dates); conflict != nil {
			return fmt.Errorf("%w: desk %d has booking %d for %s",
				bookingserrors.ErrDeskAlreadyBooked, deskID, conflict.ID, conflict.Dates)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrDeskAlreadyBooked), errors.Is(err, bookingserrors.ErrDeskBusy):
			s.log.Info("Booking refused", "desk_id", deskID, "user_id", userID, "dates", dates.String(), "reason", err)
			return nil, err
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, fmt.Errorf("%w: %d", bookingserrors.ErrDeskNotFound, deskID)
		}
		s.log.Error("Failed to create booking", "desk_id", deskID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %w", bookingserrors.ErrPersistenceFailure, err)
	}

	s.log.Info("Booking created successfully",
		"id", booking.ID,
		"desk_id", booking.DeskID,
		"user_id", booking.UserID,
		"dates", booking.Dates.String(),
	)
	s.publish(ctx, events.TypeBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, id int64) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return fmt.Errorf("%w: %d", bookingserrors.ErrBookingNotFound, id)
		}
		s.log.Error("Failed to cancel booking", "id", id, "error", err)
		return fmt.Errorf("%w: %w", bookingserrors.ErrPersistenceFailure, err)
	}

	s.log.Info("Booking cancelled", "id", id, "desk_id", removed.DeskID)
	s.publish(ctx, events.TypeBookingCancelled, removed)
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", bookingserrors.ErrBookingNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", bookingserrors.ErrPersistenceFailure, err)
	}
	return b, nil
}

func (s *bookingService) IsAvailableOn(ctx context.Context, deskID int64, date string) (bool, error) {
	day, err := s.parseDate("date", date)
	if err != nil {
		return false, err
	}
	existing, err := s.deskBookings(ctx, deskID)
	if err != nil {
		return false, err
	}
	return policy.IsAvailableOn(existing, day), nil
}

func (s *bookingService) BookingsOn(ctx context.Context, deskID int64, date string) ([]*model.Booking, error) {
	day, err := s.parseDate("date", date)
	if err != nil {
		return nil, err
	}
	existing, err := s.deskBookings(ctx, deskID)
	if err != nil {
		return nil, err
	}
	return policy.BookingsContaining(existing, day), nil
}

func (s *bookingService) BookingsOverlapping(ctx context.Context, deskID int64, dateFrom, dateTo string) ([]*model.Booking, error) {
	period, err := s.parseRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	existing, err := s.deskBookings(ctx, deskID)
	if err != nil {
		return nil, err
	}
	return policy.BookingsOverlapping(existing, period), nil
}

func (s *bookingService) UpcomingForDesk(ctx context.Context, deskID int64, from string) ([]*model.Booking, error) {
	day, err := s.parseDate("from", from)
	if err != nil {
		return nil, err
	}
	existing, err := s.deskBookings(ctx, deskID)
	if err != nil {
		return nil, err
	}
	return policy.BookingsFrom(existing, day), nil
}

func (s *bookingService) ListForDesk(ctx context.Context, deskID int64) ([]*model.Booking, error) {
	existing, err := s.deskBookings(ctx, deskID)
	if err != nil {
		return nil, err
	}
	model.SortByFrom(existing)
	return existing, nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	list, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bookingserrors.ErrPersistenceFailure, err)
	}
	model.SortByFrom(list)
	return list, nil
}

func (s *bookingService) ListDesks(ctx context.Context, filter model.DeskFilter) ([]*model.Desk, error) {
	desks, err := s.desks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bookingserrors.ErrPersistenceFailure, err)
	}
	return desks, nil
}

// parseRange runs the first two create checks: format, then ordering.
func (s *bookingService) parseRange(dateFrom, dateTo string) (model.DateRange, error) {
	if err := s.validator.ValidateDates(dateFrom, dateTo); err != nil {
		return model.DateRange{}, fmt.Errorf("%w: %w", bookingserrors.ErrInvalidDateFormat, err)
	}
	dates, err := model.ParseDateRange(dateFrom, dateTo)
	if err != nil {
		if errors.Is(err, model.ErrInvalidDateRange) {
			return model.DateRange{}, fmt.Errorf("%w: %s > %s", bookingserrors.ErrInvalidDateRange, dateFrom, dateTo)
		}
		return model.DateRange{}, fmt.Errorf("%w: %w", bookingserrors.ErrInvalidDateFormat, err)
	}
	return dates, nil
}

func (s *bookingService) parseDate(field, value string) (time.Time, error) {
	if err := s.validator.ValidateDate(field, value); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", bookingserrors.ErrInvalidDateFormat, err)
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", bookingserrors.ErrInvalidDateFormat, err)
	}
	return d, nil
}

func (s *bookingService) requireDesk(ctx context.Context, deskID int64) error {
	if _, err := s.desks.FindByID(ctx, deskID); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return fmt.Errorf("%w: %d", bookingserrors.ErrDeskNotFound, deskID)
		}
		return fmt.Errorf("%w: %w", bookingserrors.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *bookingService) deskBookings(ctx context.Context, deskID int64) ([]*model.Booking, error) {
	if err := s.requireDesk(ctx, deskID); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByDesk(ctx, deskID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bookingserrors.ErrPersistenceFailure, err)
	}
	return existing, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, b, s.now())); err != nil {
		s.log.Warn("Failed to publish booking event",
			"type", eventType,
			"id", b.ID,
			"desk_id", b.DeskID,
			"error", err,
		)
	}
}
