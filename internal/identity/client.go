package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const listPageSize = 100

// Client reads users from a Clerk-compatible backend API.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type apiUser struct {
	ID                    string            `json:"id"`
	FirstName             string            `json:"first_name"`
	LastName              string            `json:"last_name"`
	ImageURL              string            `json:"image_url"`
	PrimaryEmailAddressID string            `json:"primary_email_address_id"`
	EmailAddresses        []apiEmailAddress `json:"email_addresses"`
}

// toUser picks the primary address when flagged, else the first one.
func (u *apiUser) toUser() *User {
	user := &User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ImageURL:  u.ImageURL,
	}
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			user.Email = e.EmailAddress
			return user
		}
	}
	if len(u.EmailAddresses) > 0 {
		user.Email = u.EmailAddresses[0].EmailAddress
	}
	return user
}

func (c *Client) LookupUser(ctx context.Context, userID string) (*User, error) {
	var u apiUser
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), nil, &u); err != nil {
		return nil, err
	}
	return u.toUser(), nil
}

func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	query := url.Values{}
	query.Set("email_address", email)
	query.Set("limit", "1")

	var users []apiUser
	if err := c.get(ctx, "/users", query, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0].toUser(), nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var all []User
	for offset := 0; ; offset += listPageSize {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(listPageSize))
		query.Set("offset", strconv.Itoa(offset))

		var page []apiUser
		if err := c.get(ctx, "/users", query, &page); err != nil {
			return nil, err
		}
		for i := range page {
			all = append(all, *page[i].toUser())
		}
		if len(page) < listPageSize {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("identity: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity: decode %s: %w", path, err)
	}
	return nil
}
