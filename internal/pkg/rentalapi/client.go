package rentalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetrent/fleetrent-client/internal/rental"
	"github.com/fleetrent/fleetrent-client/internal/session"
)

const defaultTimeout = 10 * time.Second

// Client is the HTTP client for the rental backend. It is stateless and
// safe for concurrent use; the authenticated identity is passed per call.
type Client struct {
	baseURL string
	ua      string
	http    *http.Client
}

// NewClient creates a rental backend client.
func NewClient(baseURL string, timeout time.Duration, ua string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      ua,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Login authenticates against the backend and builds the session for the
// returned token.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		Token  string `json:"token"`
		Role   string `json:"role"`
		UserID string `json:"userId"`
	}
	if err := c.do(ctx, nil, http.MethodPost, "/api/public/authentication/login", nil, body, &out, "login"); err != nil {
		return session.Session{}, err
	}
	return session.New(out.Token, session.ParseRole(out.Role), out.UserID), nil
}

// FetchReservations queries one page of reservations for the filter.
// Empty optional fields are omitted from the query entirely so the backend
// does not treat "" as a literal filter value.
func (c *Client) FetchReservations(ctx context.Context, sess session.Session, filter rental.FilterSpec) (*rental.Page[rental.Reservation], error) {
	q := url.Values{}
	if filter.From != "" {
		q.Set("from", filter.From)
	}
	if filter.To != "" {
		q.Set("to", filter.To)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	q.Set("page", strconv.Itoa(filter.PageIndex))
	if filter.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(filter.PageSize))
	}

	var page rental.Page[rental.Reservation]
	if err := c.do(ctx, &sess, http.MethodGet, "/api/private/reservations", q, nil, &page, "fetch reservations"); err != nil {
		return nil, err
	}
	return &page, nil
}

// TransitionStatus asks the backend to move a reservation to the target
// status. The backend is the final authority on legality and returns the
// updated reservation on success.
func (c *Client) TransitionStatus(ctx context.Context, sess session.Session, id int64, target rental.Status) (*rental.Reservation, error) {
	body := map[string]string{"status": string(target)}
	var updated rental.Reservation
	path := fmt.Sprintf("/api/private/reservations/%d/status", id)
	if err := c.do(ctx, &sess, http.MethodPut, path, nil, body, &updated, "update reservation status"); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListBranches fetches the public branch directory.
func (c *Client) ListBranches(ctx context.Context) ([]rental.Branch, error) {
	var branches []rental.Branch
	if err := c.do(ctx, nil, http.MethodGet, "/api/public/branch/branches", nil, nil, &branches, "fetch branches"); err != nil {
		return nil, err
	}
	return branches, nil
}

// ListCars fetches the fleet list.
func (c *Client) ListCars(ctx context.Context, sess session.Session) ([]rental.Car, error) {
	var cars []rental.Car
	if err := c.do(ctx, &sess, http.MethodGet, "/api/private/car/cars", nil, nil, &cars, "fetch cars"); err != nil {
		return nil, err
	}
	return cars, nil
}

// RevenueFilter narrows the revenues listing. Empty fields are omitted.
type RevenueFilter struct {
	From      string
	To        string
	CarIDs    []int64
	PageIndex int
}

// FetchRevenues queries one page of revenue lines.
func (c *Client) FetchRevenues(ctx context.Context, sess session.Session, filter RevenueFilter) (*rental.Page[rental.Revenue], error) {
	q := url.Values{}
	if filter.From != "" {
		q.Set("from", filter.From)
	}
	if filter.To != "" {
		q.Set("to", filter.To)
	}
	if len(filter.CarIDs) > 0 {
		q.Set("carIds", joinIDs(filter.CarIDs))
	}
	q.Set("page", strconv.Itoa(filter.PageIndex))

	var page rental.Page[rental.Revenue]
	if err := c.do(ctx, &sess, http.MethodGet, "/api/private/revenues", q, nil, &page, "fetch revenues"); err != nil {
		return nil, err
	}
	return &page, nil
}

// ExpenseFilter narrows the expenses listing. Empty fields are omitted.
type ExpenseFilter struct {
	From      string
	To        string
	BranchIDs []int64
	PageIndex int
}

// FetchExpenses queries one page of expense lines.
func (c *Client) FetchExpenses(ctx context.Context, sess session.Session, filter ExpenseFilter) (*rental.Page[rental.Expense], error) {
	q := url.Values{}
	if filter.From != "" {
		q.Set("from", filter.From)
	}
	if filter.To != "" {
		q.Set("to", filter.To)
	}
	if len(filter.BranchIDs) > 0 {
		q.Set("branchIds", joinIDs(filter.BranchIDs))
	}
	q.Set("page", strconv.Itoa(filter.PageIndex))

	var page rental.Page[rental.Expense]
	if err := c.do(ctx, &sess, http.MethodGet, "/api/private/expenses", q, nil, &page, "fetch expenses"); err != nil {
		return nil, err
	}
	return &page, nil
}

// do performs one backend round trip. sess may be nil for public endpoints.
func (c *Client) do(ctx context.Context, sess *session.Session, method, path string, query url.Values, reqBody, out any, op string) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("%s: client is nil", op)
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("%s: base url is empty", op)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, op, err)
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("%s: read response: %w", op, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(op, resp.StatusCode, b)
	}

	if out != nil && len(b) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("%s: decode response: %w body=%s", op, err, string(b))
		}
	}

	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
