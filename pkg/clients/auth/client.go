package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/inventory/internal/config"
	"github.com/mamadbah2/inventory/internal/domain/models"
)

// Client exposes the password sign-in flow of the hosted auth service.
type Client interface {
	SignIn(ctx context.Context, email, password string) (*Token, error)
	User(ctx context.Context, accessToken string) (*User, error)
	SignOut(ctx context.Context, accessToken string) error
}

// User identifies an authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Token is the outcome of a successful sign-in.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	now        func() time.Time
}

// NewClient builds an auth client against the store's auth endpoint.
func NewClient(cfg config.StoreConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.URL+"/auth/v1").
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient: restyClient,
		now:        time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// apiError covers both error payload shapes the auth service emits.
type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
}

func (e *apiError) message() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	default:
		return e.Error
	}
}

// SignIn exchanges email and password for an access token.
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*Token, error) {
	result := new(tokenResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(result).
		SetError(apiErr).
		Post("token")
	if err := check("sign in", resp, err, apiErr); err != nil {
		return nil, err
	}

	expiresAt := c.now().Add(time.Duration(result.ExpiresIn) * time.Second)
	if result.ExpiresAt > 0 {
		expiresAt = time.Unix(result.ExpiresAt, 0)
	}

	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    expiresAt.UTC(),
		User:         result.User,
	}, nil
}

// User returns the account that owns accessToken.
func (c *APIClient) User(ctx context.Context, accessToken string) (*User, error) {
	result := new(User)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(result).
		SetError(apiErr).
		Get("user")
	if err := check("get user", resp, err, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

// SignOut revokes accessToken at the auth service.
func (c *APIClient) SignOut(ctx context.Context, accessToken string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetError(apiErr).
		Post("logout")
	return check("sign out", resp, err, apiErr)
}

// check maps rejected credentials to ErrUnauthenticated and everything else to a StoreError.
func check(op string, resp *resty.Response, err error, apiErr *apiError) error {
	if err != nil {
		return &models.StoreError{Op: "auth " + op, Err: err}
	}
	status := resp.StatusCode()
	if status < http.StatusBadRequest {
		return nil
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return fmt.Errorf("auth %s: %s: %w", op, apiErr.message(), models.ErrUnauthenticated)
	}
	return &models.StoreError{Op: "auth " + op, Status: status, Code: apiErr.ErrorCode, Message: apiErr.message()}
}
