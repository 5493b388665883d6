package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"deskbook/pkg/model"
)

const idempotencyHeader = "Idempotency-Key"

// BookingClient talks to the booking API and hands back the same model types
// the service uses.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// DeskQuery selects the bookings view of a desk. Date wins over From/To; an
// empty query lists every booking.
type DeskQuery struct {
	Date string
	From string
	To   string
}

func (q DeskQuery) encode() string {
	v := url.Values{}
	for key, val := range map[string]string{"date": q.Date, "from": q.From, "to": q.To} {
		if val != "" {
			v.Set(key, val)
		}
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

type bookingEnvelope struct {
	Booking *model.Booking `json:"booking"`
}

type bookingsEnvelope struct {
	Count    int              `json:"count"`
	Bookings []*model.Booking `json:"bookings"`
}

type availabilityEnvelope struct {
	Available bool `json:"available"`
}

// Create books a desk. A non-empty idempotencyKey makes retries of the same
// request replay the first answer.
func (c *BookingClient) Create(ctx context.Context, req model.CreateBookingRequest, idempotencyKey string) (*model.Booking, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{idempotencyHeader: idempotencyKey}
	}
	resp, err := c.httpClient.POST(ctx, "/api/v1/bookings", req, headers)
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusCreated); err != nil {
		return nil, err
	}
	return decodeBooking(resp)
}

func (c *BookingClient) Get(ctx context.Context, id int64) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}
	return decodeBooking(resp)
}

func (c *BookingClient) Cancel(ctx context.Context, id int64) error {
	resp, err := c.httpClient.DELETE(ctx, "/api/v1/bookings/"+strconv.FormatInt(id, 10))
	if err != nil {
		return err
	}
	return expect(resp, http.StatusOK)
}

func (c *BookingClient) DeskBookings(ctx context.Context, deskID int64, q DeskQuery) ([]*model.Booking, error) {
	path := fmt.Sprintf("/api/v1/desks/%d/bookings%s", deskID, q.encode())
	return c.list(ctx, path)
}

func (c *BookingClient) UserBookings(ctx context.Context, userID int64) ([]*model.Booking, error) {
	return c.list(ctx, fmt.Sprintf("/api/v1/users/%d/bookings", userID))
}

func (c *BookingClient) Availability(ctx context.Context, deskID int64, date string) (bool, error) {
	path := fmt.Sprintf("/api/v1/desks/%d/availability?date=%s", deskID, url.QueryEscape(date))
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return false, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return false, err
	}
	var env availabilityEnvelope
	if err := resp.DecodeJSON(&env); err != nil {
		return false, fmt.Errorf("could not decode availability: %s: %w", resp, err)
	}
	return env.Available, nil
}

func (c *BookingClient) list(ctx context.Context, path string) ([]*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var env bookingsEnvelope
	if err := resp.DecodeJSON(&env); err != nil {
		return nil, fmt.Errorf("could not decode booking list: %s: %w", resp, err)
	}
	return env.Bookings, nil
}

func decodeBooking(resp *Response) (*model.Booking, error) {
	var env bookingEnvelope
	if err := resp.DecodeJSON(&env); err != nil {
		return nil, fmt.Errorf("could not decode booking: %s: %w", resp, err)
	}
	if env.Booking == nil {
		return nil, fmt.Errorf("response carries no booking: %s", resp)
	}
	return env.Booking, nil
}
