package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// decode reads, closes and unmarshals a response that must carry the wanted status.
func decode(resp *http.Response, want int, v interface{}) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(body, v)
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *HTTPClient) error {
	resp, err := c.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	return decode(resp, StatusOK, nil)
}

// triggerTraining enqueues a retrain and returns the job id.
func triggerTraining(ctx context.Context, c *HTTPClient) (string, error) {
	resp, err := c.Post(ctx, "/train", nil)
	if err != nil {
		return "", fmt.Errorf("failed to trigger training: %w", err)
	}
	var ack TrainAccepted
	if err := decode(resp, StatusAccepted, &ack); err != nil {
		return "", err
	}
	return ack.JobID, nil
}

// waitForJob polls the job until it leaves the queued and running states.
func waitForJob(ctx context.Context, c *HTTPClient, id string, every time.Duration) (JobStatus, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		resp, err := c.Get(ctx, "/train/"+id)
		if err != nil {
			return JobStatus{}, fmt.Errorf("failed to poll job: %w", err)
		}
		var st JobStatus
		if err := decode(resp, StatusOK, &st); err != nil {
			return JobStatus{}, err
		}
		switch st.State {
		case "succeeded":
			return st, nil
		case "failed":
			return st, fmt.Errorf("training job %s failed: %s", id, st.Error)
		}

		select {
		case <-ctx.Done():
			return st, fmt.Errorf("context cancelled while waiting for job: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// fetchQuality retrieves the top n ranked teams.
func fetchQuality(ctx context.Context, c *HTTPClient, n int) ([]Entry, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("/quality?limit=%d", n))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quality: %w", err)
	}
	var entries []Entry
	if err := decode(resp, StatusOK, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// predict asks the service for one fixture.
func predict(ctx context.Context, c *HTTPClient, home, away string) (Prediction, error) {
	resp, err := c.Post(ctx, "/predict", map[string]string{"home_team": home, "away_team": away})
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to request prediction: %w", err)
	}
	var p Prediction
	if err := decode(resp, StatusOK, &p); err != nil {
		return Prediction{}, err
	}
	return p, nil
}
