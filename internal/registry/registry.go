package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInvalidCNPJ = errors.New("invalid CNPJ")
	ErrNotFound    = errors.New("company not found")
)

// Company is the subset of the public registry record used by the application.
type Company struct {
	CNPJ      string `json:"cnpj"`
	LegalName string `json:"razao_social"`
	TradeName string `json:"nome_fantasia"`
	Street    string `json:"logradouro"`
	Number    string `json:"numero"`
	District  string `json:"bairro"`
	City      string `json:"municipio"`
	State     string `json:"uf"`
	ZipCode   string `json:"cep"`
}

// Address formats the company address as "street, number - city/state".
func (c *Company) Address() string {
	return strings.TrimSpace(fmt.Sprintf("%s, %s - %s/%s", c.Street, c.Number, c.City, c.State))
}

// Client queries the BrasilAPI CNPJ endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Lookup fetches the company registered under the given CNPJ.
// Punctuation is ignored; the check digits must be valid.
func (c *Client) Lookup(ctx context.Context, cnpj string) (*Company, error) {
	digits := Digits(cnpj)
	if !Valid(digits) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCNPJ, cnpj)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+digits, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, digits)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for cnpj %s", resp.StatusCode, digits)
	}

	var company Company
	if err := json.NewDecoder(resp.Body).Decode(&company); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	company.CNPJ = Digits(company.CNPJ)
	if company.CNPJ == "" {
		company.CNPJ = digits
	}

	return &company, nil
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, s)
}

// Valid reports whether digits is a 14-digit CNPJ with correct check digits.
func Valid(digits string) bool {
	if len(digits) != 14 || Digits(digits) != digits {
		return false
	}

	// Repeated digits pass the checksum but are never issued.
	if strings.Count(digits, digits[:1]) == len(digits) {
		return false
	}

	weights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

	return checkDigit(digits[:12], weights[1:]) == int(digits[12]-'0') &&
		checkDigit(digits[:13], weights) == int(digits[13]-'0')
}

func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}

	r := sum % 11
	if r < 2 {
		return 0
	}

	return 11 - r
}
