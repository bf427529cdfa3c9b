package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/vidgrab/internal/app"
	"github.com/yourusername/vidgrab/internal/domain"
)

// apiClient talks to a vidgrab-server
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends body as JSON and decodes the response into out. Error responses
// become errors carrying the server's message.
func (c *apiClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *apiClient) startRun(req app.RunRequest) (*domain.RunRecord, error) {
	var record domain.RunRecord
	if err := c.do(http.MethodPost, "/api/v1/runs", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *apiClient) getRun(id string) (*domain.RunRecord, error) {
	var record domain.RunRecord
	if err := c.do(http.MethodGet, "/api/v1/runs/"+url.PathEscape(id), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *apiClient) listRuns(filters url.Values) ([]domain.RunRecord, error) {
	path := "/api/v1/runs"
	if len(filters) > 0 {
		path += "?" + filters.Encode()
	}
	var records []domain.RunRecord
	if err := c.do(http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *apiClient) cancelRun(id string) (*domain.RunRecord, error) {
	var record domain.RunRecord
	if err := c.do(http.MethodPost, "/api/v1/runs/"+url.PathEscape(id)+"/cancel", nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *apiClient) stats() (*domain.RunStats, error) {
	var stats domain.RunStats
	if err := c.do(http.MethodGet, "/api/v1/runs/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// streamEvents replays a run's stream into sink until the server closes it.
// It returns the run's outcome.
func (c *apiClient) streamEvents(ctx context.Context, id string, sink domain.EventSink) (domain.RunOutcome, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/v1/runs/" + url.PathEscape(id) + "/events"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return domain.RunOutcome{}, fmt.Errorf("failed to open event stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg app.HubMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return domain.RunOutcome{}, ctx.Err()
			}
			return domain.RunOutcome{}, errors.New("event stream ended before the run finished")
		}

		switch msg.Type {
		case app.MessageNotice:
			sink.OnNotice(msg.Notice)
		case app.MessageEvent:
			if msg.Event != nil {
				sink.OnEvent(*msg.Event)
			}
		case app.MessageOutcome:
			if msg.Outcome != nil {
				sink.OnOutcome(*msg.Outcome)
				return *msg.Outcome, nil
			}
		}
	}
}
