package recordstore

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/config"
	"github.com/mamadbah2/inventory/internal/domain/models"
)

// Postgres error codes surfaced by the store's REST layer.
const (
	codeUniqueViolation  = "23505"
	codeCheckViolation   = "23514"
	codeNotNullViolation = "23502"
	codeInvalidText      = "22P02"
	codeNumericOverflow  = "22003"
)

// apiError mirrors the REST layer's error payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// Client is a resty-backed Store speaking to the hosted REST endpoint.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	token      string
	logger     *zap.Logger
}

var (
	_ Store    = (*Client)(nil)
	_ Provider = (*Client)(nil)
)

// NewClient builds a store client. Requests carry the anonymous API key until
// ForToken binds a user token.
func NewClient(cfg config.StoreConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.URL+"/rest/v1").
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		httpClient: restyClient,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// ForToken returns a copy of the client that authenticates as the token owner.
func (c *Client) ForToken(accessToken string) Store {
	clone := *c
	clone.token = accessToken
	return &clone
}

func (c *Client) request(ctx context.Context) *resty.Request {
	token := c.token
	if token == "" {
		token = c.apiKey
	}
	return c.httpClient.R().SetContext(ctx).SetAuthToken(token)
}

// List returns every product, newest first.
func (c *Client) List(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	apiErr := new(apiError)

	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{"select": "*", "order": "created_at.desc"}).
		SetResult(&rows).
		SetError(apiErr).
		Get(tableProducts)
	if err := c.check("list", resp, err, apiErr, nil); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

// Insert creates a product and returns the stored row.
func (c *Client) Insert(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var rows []productRow
	apiErr := new(apiError)

	resp, err := c.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(newProductWrite(in)).
		SetResult(&rows).
		SetError(apiErr).
		Post(tableProducts)
	if err := c.check("insert", resp, err, apiErr, &in); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &models.StoreError{Op: "insert", Status: resp.StatusCode(), Message: "no row returned"}
	}

	product := rows[0].toModel()
	return &product, nil
}

// Update replaces every editable field of the product with the given id.
func (c *Client) Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	var rows []productRow
	apiErr := new(apiError)

	resp, err := c.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetBody(newProductWrite(in)).
		SetResult(&rows).
		SetError(apiErr).
		Patch(tableProducts)
	if err := c.check("update", resp, err, apiErr, &in); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("update", id)
	}

	product := rows[0].toModel()
	return &product, nil
}

// Delete removes the product with the given id and returns its last state.
func (c *Client) Delete(ctx context.Context, id string) (*models.Product, error) {
	var rows []productRow
	apiErr := new(apiError)

	resp, err := c.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetResult(&rows).
		SetError(apiErr).
		Delete(tableProducts)
	if err := c.check("delete", resp, err, apiErr, nil); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("delete", id)
	}

	product := rows[0].toModel()
	return &product, nil
}

// ListAudit returns at most limit audit entries, newest first.
func (c *Client) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	var rows []auditRow
	apiErr := new(apiError)

	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"select": "*",
			"order":  "created_at.desc",
			"limit":  strconv.Itoa(limit),
		}).
		SetResult(&rows).
		SetError(apiErr).
		Get(tableAudit)
	if err := c.check("list audit", resp, err, apiErr, nil); err != nil {
		return nil, err
	}

	entries := make([]models.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries, nil
}

// RoleFor looks up the role row of a user. A missing row yields RoleNone.
func (c *Client) RoleFor(ctx context.Context, userID string) (models.Role, error) {
	var rows []roleRow
	apiErr := new(apiError)

	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{"select": "role", "user_id": "eq." + userID}).
		SetResult(&rows).
		SetError(apiErr).
		Get(tableUserRoles)
	if err := c.check("role lookup", resp, err, apiErr, nil); err != nil {
		return models.RoleNone, err
	}
	if len(rows) == 0 {
		c.logger.Warn("no role row for user, defaulting to none", zap.String("user_id", userID))
		return models.RoleNone, nil
	}
	return models.ParseRole(rows[0].Role), nil
}

// check turns transport failures and error responses into domain errors.
func (c *Client) check(op string, resp *resty.Response, err error, apiErr *apiError, in *models.ProductInput) error {
	if err != nil {
		return &models.StoreError{Op: op, Err: err}
	}
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}

	c.logger.Debug("store request failed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.String("code", apiErr.Code),
		zap.String("message", apiErr.Message),
	)

	switch apiErr.Code {
	case codeUniqueViolation:
		dup := &models.DuplicateError{}
		if in != nil {
			dup.Name, dup.Category = in.Name, in.Category
		}
		return dup
	case codeCheckViolation, codeNotNullViolation, codeInvalidText, codeNumericOverflow:
		return models.NewValidationError("product", apiErr.Message)
	}

	message := apiErr.Message
	if message == "" {
		message = fmt.Sprintf("unexpected response %s", resp.Status())
	}
	return &models.StoreError{Op: op, Status: resp.StatusCode(), Code: apiErr.Code, Message: message}
}
