package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type qrisRequest struct {
	BaseString string `json:"base_string"`
	Amount     int64  `json:"amount"`
}

type qrisResponse struct {
	QRISString string `json:"qris_string"`
}

// QRISClient asks the QRIS microservice to embed an amount into the merchant's
// static QRIS payload.
type QRISClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewQRISClient(baseURL string, timeout time.Duration) *QRISClient {
	return &QRISClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *QRISClient) Generate(ctx context.Context, baseString string, amount int64) (string, error) {
	body, err := json.Marshal(qrisRequest{BaseString: baseString, Amount: amount})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("qris service returned status %d", resp.StatusCode)
	}

	var out qrisResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.QRISString == "" {
		return "", errors.New("qris service returned an empty string")
	}

	return out.QRISString, nil
}
