package nbp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akalinowski/nbp-rates-etl/internal/apperrors"
	"github.com/akalinowski/nbp-rates-etl/internal/core/domain"
	"github.com/akalinowski/nbp-rates-etl/internal/core/ports"
)

const dateLayout = "2006-01-02"

// Client fetches daily exchange-rate tables from the NBP API. It performs a
// single request per fetch; retry policy, if any, belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Ensure implementation matches interface
var _ ports.RateSource = (*Client)(nil)

// NewClient creates a client for the table endpoint at baseURL. The timeout
// bounds the whole request, including reading the body.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// rateEntry mirrors one element of the NBP "rates" array. Mid is decoded as
// json.Number so the decimal value is built from the source's exact textual
// representation, never a float64 intermediate.
type rateEntry struct {
	Currency string      `json:"currency"`
	Code     string      `json:"code"`
	Mid      json.Number `json:"mid"`
}

type rateTable struct {
	EffectiveDate string      `json:"effectiveDate"`
	Rates         []rateEntry `json:"rates"`
}

// FetchRates fetches the rate table published for the given date. A 404
// means no table was published (weekend/holiday) and yields an unavailable
// snapshot with a nil error.
func (c *Client) FetchRates(ctx context.Context, date time.Time) (domain.Snapshot, error) {
	dateStr := date.Format(dateLayout)
	url := fmt.Sprintf("%s/%s/?format=json", c.baseURL, dateStr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: building request for %s: %v", apperrors.ErrBadRequest, dateStr, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: fetching rates for %s: %v", apperrors.ErrUpstream, dateStr, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Warn("No rate table published for date", slog.String("date", dateStr))
		return domain.Snapshot{Available: false}, nil
	case resp.StatusCode == http.StatusBadRequest:
		return domain.Snapshot{}, fmt.Errorf("%w: GET %s", apperrors.ErrBadRequest, url)
	case resp.StatusCode != http.StatusOK:
		return domain.Snapshot{}, fmt.Errorf("%w: GET %s returned status %d", apperrors.ErrUpstream, url, resp.StatusCode)
	}

	var tables []rateTable
	if err := json.NewDecoder(resp.Body).Decode(&tables); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: decoding response for %s: %v", apperrors.ErrUpstream, dateStr, err)
	}
	if len(tables) == 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: response for %s carries no rate table", apperrors.ErrUpstream, dateStr)
	}

	rates := make([]domain.RawRate, 0, len(tables[0].Rates))
	for _, entry := range tables[0].Rates {
		mid, err := decimal.NewFromString(entry.Mid.String())
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: invalid mid rate %q for %s: %v",
				apperrors.ErrUpstream, entry.Mid.String(), entry.Code, err)
		}
		rates = append(rates, domain.RawRate{
			Code: entry.Code,
			Name: entry.Currency,
			Mid:  mid,
		})
	}

	c.logger.Info("Fetched rate table",
		slog.String("date", dateStr), slog.Int("rates", len(rates)))
	return domain.Snapshot{Rates: rates, Available: true}, nil
}
