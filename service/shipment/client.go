// Package shipment fetches shipment confirmations of baskets from the vendor API.
package shipment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"problemsolving.GO/core/apperr"
	"problemsolving.GO/core/dates"
	"problemsolving.GO/service/shortfall"
)

// Provider returns the shipped lines of a basket.
type Provider interface {
	Shipped(ctx context.Context, company, basket string) ([]shortfall.ShippedRecord, error)
}

// spedito is one row of the GetSpedito2 payload. Numbers arrive either as JSON numbers or strings.
type spedito struct {
	OrderNumber string `mapstructure:"nOrdine"`
	PickList    string `mapstructure:"nLista"`
	SKU         string `mapstructure:"CodiceArticolo"`
	Quantity    string `mapstructure:"Quantita"`
	Description string `mapstructure:"Descrizione"`
	DateTime    string `mapstructure:"DataOra"`
}

// Client calls GET {base}/Orders/GetSpedito2?Barcode=&Cesta={basket} with a bearer token.
type Client struct {
	baseURL string
	token   string
	tokens  map[string]string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		tokens:  map[string]string{},
		http:    &http.Client{Timeout: timeout},
	}
}

// WithCompanyToken sets the bearer token used for one company.
func (c *Client) WithCompanyToken(company, token string) *Client {
	if token != "" {
		c.tokens[company] = token
	}
	return c
}

func (c *Client) tokenFor(company string) string {
	if t, ok := c.tokens[company]; ok {
		return t
	}
	return c.token
}

func (c *Client) Shipped(ctx context.Context, company, basket string) ([]shortfall.ShippedRecord, error) {
	if c.baseURL == "" {
		return nil, apperr.Upstream("vendor API URL not configured")
	}
	q := url.Values{}
	q.Set("Barcode", "")
	q.Set("Cesta", basket)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Orders/GetSpedito2?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if t := c.tokenFor(company); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Upstream("GetSpedito2 %s: %v", basket, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.Upstream("GetSpedito2 %s: HTTP %d: %s", basket, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return Decode(resp.Body)
}

// Decode parses a GetSpedito2 response body. Rows without a usable pick-list, sku or quantity are dropped.
func Decode(r io.Reader) ([]shortfall.ShippedRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, apperr.Upstream("decode shipment payload: %v", err)
	}
	raw, ok := payload["Spedito"]
	if !ok {
		return nil, apperr.Upstream("shipment payload has no Spedito key")
	}
	if raw == nil {
		return nil, nil
	}

	var rows []spedito
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rows,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, apperr.Upstream("decode Spedito rows: %v", err)
	}

	out := make([]shortfall.ShippedRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := row.record()
		if err != nil {
			log.Printf("[shipment] row %d skipped: %v", i, err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s spedito) record() (shortfall.ShippedRecord, error) {
	pick, err := parsePickList(s.PickList)
	if err != nil {
		return shortfall.ShippedRecord{}, err
	}
	sku := strings.TrimSpace(s.SKU)
	if sku == "" {
		return shortfall.ShippedRecord{}, fmt.Errorf("empty CodiceArticolo")
	}
	qty, err := parseQuantity(s.Quantity)
	if err != nil {
		return shortfall.ShippedRecord{}, err
	}
	return shortfall.ShippedRecord{
		OrderNumber: strings.TrimSpace(s.OrderNumber),
		PickListID:  pick,
		SKU:         sku,
		QtyShipped:  qty,
		ShippedAt:   dates.Parse(s.DateTime),
		Description: strings.TrimSpace(s.Description),
	}, nil
}

func parsePickList(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
		return n, nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f == float64(int64(f)) {
		return int64(f), nil
	}
	return 0, fmt.Errorf("invalid nLista %q", v)
}

func parseQuantity(v string) (decimal.Decimal, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid Quantita %q", v)
	}
	return d, nil
}
