// Package calendarapi is the HTTP adapter for the upstream calendar
// service, covering the board fetches and the schedule/run write calls.
package calendarapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/platform/obs"
	"delivery-board-service/internal/ports"
)

// Client talks to the calendar REST API. Transient failures (429, 5xx,
// network errors) are retried with backoff; a definitive rejection is
// returned to the caller, which rolls back by refetching.
//
// The client is safe for concurrent use.
type Client struct {
	session *http.Client
	baseURL string
	apiKey  string
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("calendar api: base URL is empty")
	}

	return &Client{
		session: &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// FetchRange retrieves the full board population for a date window and
// assembles it into a snapshot.
func (c *Client) FetchRange(ctx context.Context, startDate, endDate string) (_ domain.BoardSnapshot, err error) {
	defer obs.Time(ctx, "calendar.FetchRange")(&err)

	if startDate == "" || endDate == "" {
		return domain.BoardSnapshot{}, errors.New("fetch range: start and end dates must be non-empty")
	}

	q := url.Values{}
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	endpoint := c.baseURL + "/calendar/range/?" + q.Encode()

	var body rangeResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return domain.BoardSnapshot{}, fmt.Errorf("fetch range %s..%s: %w", startDate, endDate, err)
	}

	snap := assembleSnapshot(body)
	snap.StartDate = startDate
	snap.EndDate = endDate
	snap.FetchedAt = time.Now()
	return snap, nil
}

// FetchUnscheduled retrieves loose orders that have no scheduled date.
func (c *Client) FetchUnscheduled(ctx context.Context) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "calendar.FetchUnscheduled")(&err)

	var body unscheduledResponse
	if err := c.getJSON(ctx, c.baseURL+"/calendar/unscheduled/", &body); err != nil {
		return nil, fmt.Errorf("fetch unscheduled: %w", err)
	}

	orders := make([]domain.Order, 0, len(body.Orders))
	for _, w := range body.Orders {
		orders = append(orders, w.toDomain())
	}
	return orders, nil
}

// UpdateSchedule persists one order's placement. Nil date/truck/run fields
// are serialized as JSON nulls, which the backend reads as "unscheduled".
func (c *Client) UpdateSchedule(ctx context.Context, update ports.ScheduleUpdate) (err error) {
	defer obs.Time(ctx, "calendar.UpdateSchedule")(&err)

	if update.OrderID == "" {
		return errors.New("update schedule: order id must be non-empty")
	}
	kind := string(update.OrderType)
	if kind != string(domain.OrderTypeSales) && kind != string(domain.OrderTypePurchase) {
		return fmt.Errorf("update schedule: unknown order type %q", update.OrderType)
	}

	payload := scheduleUpdateRequest{
		ScheduledDate:    update.Date,
		ScheduledTruckID: update.TruckID,
		DeliveryRunID:    update.RunID,
	}
	endpoint := fmt.Sprintf("%s/calendar/update/%s/%s/", c.baseURL, kind, url.PathEscape(update.OrderID))
	if err := c.sendJSON(ctx, http.MethodPost, endpoint, payload); err != nil {
		return fmt.Errorf("update schedule order=%s: %w", update.OrderID, err)
	}
	return nil
}

// CreateRun persists a new run.
func (c *Client) CreateRun(ctx context.Context, fields ports.RunFields) (err error) {
	defer obs.Time(ctx, "calendar.CreateRun")(&err)

	payload := runRequest{
		ID:      fields.RunID,
		Name:    fields.Name,
		TruckID: fields.TruckID,
		Date:    fields.Date,
		Notes:   fields.Notes,
	}
	if err := c.sendJSON(ctx, http.MethodPost, c.baseURL+"/calendar/runs/create/", payload); err != nil {
		return fmt.Errorf("create run %s: %w", fields.RunID, err)
	}
	return nil
}

// UpdateRun persists changed run fields (cell placement, name, notes).
func (c *Client) UpdateRun(ctx context.Context, fields ports.RunFields) (err error) {
	defer obs.Time(ctx, "calendar.UpdateRun")(&err)

	if fields.RunID == "" {
		return errors.New("update run: run id must be non-empty")
	}
	payload := runRequest{
		Name:    fields.Name,
		TruckID: fields.TruckID,
		Date:    fields.Date,
		Notes:   fields.Notes,
	}
	endpoint := c.baseURL + "/calendar/runs/" + url.PathEscape(fields.RunID) + "/"
	if err := c.sendJSON(ctx, http.MethodPatch, endpoint, payload); err != nil {
		return fmt.Errorf("update run %s: %w", fields.RunID, err)
	}
	return nil
}

// DeleteRun removes a run upstream.
func (c *Client) DeleteRun(ctx context.Context, runID string) (err error) {
	defer obs.Time(ctx, "calendar.DeleteRun")(&err)

	if runID == "" {
		return errors.New("delete run: run id must be non-empty")
	}
	endpoint := c.baseURL + "/calendar/runs/" + url.PathEscape(runID) + "/delete/"
	if err := c.sendJSON(ctx, http.MethodDelete, endpoint, nil); err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	return nil
}

// UpdateOrderNotes persists an order annotation through the order resource.
func (c *Client) UpdateOrderNotes(ctx context.Context, orderType domain.OrderType, orderID, notes string) (err error) {
	defer obs.Time(ctx, "calendar.UpdateOrderNotes")(&err)

	if orderID == "" {
		return errors.New("update order notes: order id must be non-empty")
	}
	endpoint := fmt.Sprintf("%s/orders/%s/%s/", c.baseURL, orderType, url.PathEscape(orderID))
	payload := map[string]string{"notes": notes}
	if err := c.sendJSON(ctx, http.MethodPatch, endpoint, payload); err != nil {
		return fmt.Errorf("update order notes order=%s: %w", orderID, err)
	}
	return nil
}

// ToggleDateLock flips the advisory lock on a calendar date upstream.
func (c *Client) ToggleDateLock(ctx context.Context, date string) (err error) {
	defer obs.Time(ctx, "calendar.ToggleDateLock")(&err)

	if date == "" {
		return errors.New("toggle date lock: date must be non-empty")
	}
	endpoint := c.baseURL + "/calendar/locks/" + url.PathEscape(date) + "/toggle/"
	if err := c.sendJSON(ctx, http.MethodPost, endpoint, nil); err != nil {
		return fmt.Errorf("toggle date lock %s: %w", date, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint string, payload any) error {
	body, err := encodeBody(payload)
	if err != nil {
		return err
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, method, endpoint, body())
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
