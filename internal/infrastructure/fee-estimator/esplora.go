package feeestimator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ark-network/mixer/internal/core/domain"
)

const (
	feeEstimatesPath = "fee-estimates"
	esploraTimeout   = 10 * time.Second

	// Used when the esplora mempool is empty and returns no estimate.
	fallbackSatPerVByte = 2.0
)

type esploraClient struct {
	url    string
	client *http.Client
}

func newEsploraClient(url string) *esploraClient {
	return &esploraClient{url, &http.Client{Timeout: esploraTimeout}}
}

// GetFeeMap returns the sat/kvB fee rate for every confirmation target
// esplora has an estimate for.
func (c *esploraClient) GetFeeMap() (map[uint32]uint32, error) {
	endpoint, err := url.JoinPath(c.url, feeEstimatesPath)
	if err != nil {
		return nil, fmt.Errorf("invalid esplora url: %s", err)
	}

	resp, err := c.client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fee estimates: %s", err)
	}
	// nolint:all
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fee estimates endpoint returned %s", resp.Status)
	}

	// Esplora rates are in sat/vB, keyed by confirmation target.
	estimates := make(map[string]float64)
	if err := json.NewDecoder(resp.Body).Decode(&estimates); err != nil {
		return nil, fmt.Errorf("invalid fee estimates: %s", err)
	}
	if len(estimates) <= 0 {
		estimates = map[string]float64{"1": fallbackSatPerVByte}
	}

	feeMap := make(map[uint32]uint32, len(estimates))
	for target, satPerVByte := range estimates {
		confTarget, err := strconv.ParseUint(target, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid confirmation target %q", target)
		}
		feeMap[uint32(confTarget)] = uint32(domain.FeeRateFromSatPerVByte(satPerVByte))
	}
	return feeMap, nil
}
