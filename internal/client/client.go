package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moodtrack/internal/models"
)

// APIError is a non-2xx answer from the mood API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mood api: %d %s", e.Status, e.Message)
}

// MoodClient talks to the /moods HTTP surface.
type MoodClient struct {
	baseURL string
	http    *http.Client
}

func NewMoodClient(baseURL string) *MoodClient {
	return &MoodClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (mc *MoodClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("request marshal failed: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, mc.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("request create failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := mc.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &errBody) != nil || errBody.Error == "" {
			errBody.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("response decode failed: %w", err)
	}
	return nil
}

func (mc *MoodClient) List(ctx context.Context) ([]models.MoodEntry, error) {
	var entries []models.MoodEntry
	if err := mc.do(ctx, http.MethodGet, "/moods", nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.MoodEntry{}
	}
	return entries, nil
}

func (mc *MoodClient) Create(ctx context.Context, req models.CreateMoodRequest) (models.MoodEntry, error) {
	var entry models.MoodEntry
	err := mc.do(ctx, http.MethodPost, "/moods", req, &entry)
	return entry, err
}

func (mc *MoodClient) Delete(ctx context.Context, id int64) (models.MoodEntry, error) {
	var entry models.MoodEntry
	err := mc.do(ctx, http.MethodDelete, "/moods/"+strconv.FormatInt(id, 10), nil, &entry)
	return entry, err
}

// Trend asks the server for an aggregate. An empty date means today on the server.
func (mc *MoodClient) Trend(ctx context.Context, period models.Period, date string) (models.Trend, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", string(period))
	}
	if date != "" {
		q.Set("date", date)
	}

	path := "/moods/trends"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var trend models.Trend
	err := mc.do(ctx, http.MethodGet, path, nil, &trend)
	return trend, err
}
