package propwise

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/shopspring/decimal"
)

// Client talks to the Propwise property-management REST API with one
// account's credentials. Rate limiting and timeouts are env-tuned; retry
// and backoff belong to the caller's delivery system, not here.
type Client struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   <-chan time.Time
}

func NewClient(apiKey string) (*Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("PROPWISE_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.propwise.io"
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("PROPWISE_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("propwise api key is empty")
	}
	rateLimitPerMin := int64(60)
	if v := strings.TrimSpace(os.Getenv("PROPWISE_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.Tick(interval),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, error) {
	<-c.limiter
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("propwise api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

var errNotFound = errors.New("propwise: not found")

var _ API = (*Client)(nil)

func getJSON[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var out T
	raw, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Client) ListEligibleLeases(ctx context.Context) ([]models.LeaseEligibilityRecord, error) {
	wire, err := getJSON[[]propwiseLease](ctx, c, "/api/v1/leases/eligible-increases", nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.LeaseEligibilityRecord, 0, len(wire))
	for _, l := range wire {
		lease, err := l.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, lease)
	}
	return out, nil
}

func (c *Client) GetMarketRent(ctx context.Context, propertyId, unitId string) (decimal.Decimal, error) {
	path := fmt.Sprintf("/api/v1/properties/%s/units/%s/market-rent", url.PathEscape(propertyId), url.PathEscape(unitId))
	wire, err := getJSON[marketRentResponse](ctx, c, path, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return decimalFromNumber("market_rent", wire.MarketRent)
}

func (c *Client) GetIncreaseRates(ctx context.Context) (models.RateTable, error) {
	wire, err := getJSON[propwiseRates](ctx, c, "/api/v1/rent-increase-rates", nil)
	if err != nil {
		return models.RateTable{}, err
	}
	return wire.toModel()
}

func (c *Client) ListLeaseNotes(ctx context.Context, leaseId string) ([]models.Note, error) {
	path := fmt.Sprintf("/api/v1/leases/%s/notes", url.PathEscape(leaseId))
	return c.listNotes(ctx, path)
}

func (c *Client) ListBuildingNotes(ctx context.Context, propertyId string) ([]models.Note, error) {
	path := fmt.Sprintf("/api/v1/buildings/%s/notes", url.PathEscape(propertyId))
	return c.listNotes(ctx, path)
}

func (c *Client) listNotes(ctx context.Context, path string) ([]models.Note, error) {
	wire, err := getJSON[[]propwiseNote](ctx, c, path, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.Note, 0, len(wire))
	for _, n := range wire {
		out = append(out, models.Note{Id: n.ID, Subject: n.Subject, Body: n.Body})
	}
	return out, nil
}

func (c *Client) ListRecurringTransactions(ctx context.Context, leaseId string) ([]models.RecurringTransaction, error) {
	path := fmt.Sprintf("/api/v1/leases/%s/recurring-transactions", url.PathEscape(leaseId))
	wire, err := getJSON[[]propwiseTransaction](ctx, c, path, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.RecurringTransaction, 0, len(wire))
	for _, t := range wire {
		txn, err := t.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, nil
}

func (c *Client) GetAboveGuidelineIncrease(ctx context.Context, leaseId string) (*models.AboveGuidelineAdjustment, error) {
	path := fmt.Sprintf("/api/v1/leases/%s/above-guideline-increase", url.PathEscape(leaseId))
	wire, err := getJSON[propwiseAGI](ctx, c, path, nil)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wire.toModel()
}

func (c *Client) GetPresignedDownload(ctx context.Context, documentId string) (string, error) {
	path := fmt.Sprintf("/api/v1/documents/%s/presigned-download", url.PathEscape(documentId))
	wire, err := getJSON[presignedDownloadResponse](ctx, c, path, nil)
	if err != nil {
		return "", err
	}
	if wire.URL == "" {
		return "", fmt.Errorf("empty presigned url for document %s", documentId)
	}
	return wire.URL, nil
}

// DownloadPresignedURL fetches the raw bytes behind a presigned URL. The
// URL carries its own auth; no API key header is sent.
func (c *Client) DownloadPresignedURL(ctx context.Context, presignedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, presignedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("presigned download error %d", resp.StatusCode)
	}
	return raw, nil
}

func (c *Client) UploadDocument(ctx context.Context, leaseId, propertyId, filename string, content []byte, contentType string) error {
	path := fmt.Sprintf("/api/v1/leases/%s/documents", url.PathEscape(leaseId))
	req := uploadDocumentRequest{
		PropertyID:  propertyId,
		Filename:    filename,
		ContentType: contentType,
		Content:     base64.StdEncoding.EncodeToString(content),
	}
	_, err := c.do(ctx, http.MethodPost, path, nil, req)
	return err
}

func (c *Client) UpdateLease(ctx context.Context, leaseId string, payload models.LeaseUpdate) error {
	path := fmt.Sprintf("/api/v1/leases/%s", url.PathEscape(leaseId))
	_, err := c.do(ctx, http.MethodPut, path, nil, payload)
	return err
}

func (c *Client) ExtendLease(ctx context.Context, leaseId, endDate string) error {
	path := fmt.Sprintf("/api/v1/leases/%s/extend", url.PathEscape(leaseId))
	_, err := c.do(ctx, http.MethodPost, path, nil, extendLeaseRequest{EndDate: endDate})
	return err
}

func (c *Client) CreateTask(ctx context.Context, categoryId, name, description string) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/v1/tasks", nil, createTaskRequest{
		CategoryID:  categoryId,
		Name:        name,
		Description: description,
	})
	if err != nil {
		return "", err
	}
	var resp createTaskResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) ListGlAccounts(ctx context.Context) ([]models.GlAccount, error) {
	wire, err := getJSON[[]propwiseGlAccount](ctx, c, "/api/v1/gl-accounts", nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.GlAccount, 0, len(wire))
	for _, a := range wire {
		out = append(out, models.GlAccount{Id: a.ID, Name: a.Name, Type: a.Type})
	}
	return out, nil
}

func (c *Client) ListTaskCategories(ctx context.Context) ([]models.TaskCategory, error) {
	wire, err := getJSON[[]propwiseTaskCategory](ctx, c, "/api/v1/task-categories", nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.TaskCategory, 0, len(wire))
	for _, cat := range wire {
		out = append(out, models.TaskCategory{Id: cat.ID, Name: cat.Name})
	}
	return out, nil
}

func (c *Client) GetCompanyProfile(ctx context.Context) (models.CompanyProfile, error) {
	wire, err := getJSON[propwiseCompany](ctx, c, "/api/v1/company/profile", nil)
	if err != nil {
		return models.CompanyProfile{}, err
	}
	return models.CompanyProfile{Name: wire.Name, Address: wire.Address, Phone: wire.Phone, Email: wire.Email}, nil
}

func (c *Client) ListDocumentTemplates(ctx context.Context) ([]models.DocumentTemplate, error) {
	wire, err := getJSON[[]propwiseTemplate](ctx, c, "/api/v1/document-templates", nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.DocumentTemplate, 0, len(wire))
	for _, t := range wire {
		out = append(out, models.DocumentTemplate{Id: t.ID, Name: t.Name})
	}
	return out, nil
}
