package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Chart kinds understood by the visualization service.
const (
	ChartPerformanceDifferences = "performance_differences"
	ChartWPB                    = "wpb"
	ChartIWPB                   = "iwpb"
	ChartIWPBSimulation         = "iwpb_simulation"
	ChartStatistics             = "statistics"
)

// --- Visualization ---
type ChartReq struct {
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Data      any    `json:"data"`
	OutputDir string `json:"output_dir,omitempty"`
}

type ChartResp struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func (h *HTTP) GenerateChart(ctx context.Context, url string, req ChartReq) (*ChartResp, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("viz %s encode: %w", req.Kind, err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/generate-chart", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	r.Header.Set("Content-Type", "application/json")
	resp, err := h.c.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("viz %s %s: %s", req.Kind, resp.Status, string(body))
	}

	var out ChartResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("viz %s decode: %w", req.Kind, err)
	}
	return &out, nil
}
