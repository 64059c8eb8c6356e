package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const idempotencyHeader = "Idempotency-Key"

// apiClient вызывает HTTP API сервиса доставки.
type apiClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	col     *collector
}

func newAPIClient(baseURL string, httpClient *http.Client, timeout time.Duration, col *collector) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
		col:     col,
	}
}

type orderPayload struct {
	ID string `json:"_id"`
}

// runScenario создаёт заказ и, в зависимости от режима, проводит его
// до статуса delivered и читает историю.
func runScenario(client *apiClient, cfg config, index int, runID string) (err error) {
	start := time.Now()
	defer func() {
		code := "OK"
		if err != nil {
			code = "FAILED"
		}
		client.col.record(scenarioMethod, time.Since(start), code, err == nil)
	}()

	userID := primitive.NewObjectID().Hex()
	restaurantID := primitive.NewObjectID().Hex()
	courierID := primitive.NewObjectID().Hex()

	body := map[string]any{
		"delivery_person_id": courierID,
		"status":             "pending",
		"menu_detail":        []map[string]any{{"product_name": cfg.product, "qty": 1}},
		"total_price":        cfg.price,
	}
	var created struct {
		OrderData orderPayload `json:"order_data"`
	}
	key := fmt.Sprintf("lt-create-%s-%d", runID, index)
	path := fmt.Sprintf("/order/%s/%s", userID, restaurantID)
	if err := client.call("CreateOrder", http.MethodPost, path, key, body, http.StatusCreated, &created); err != nil {
		return err
	}
	if created.OrderData.ID == "" {
		return errors.New("create response returned empty order id")
	}
	if cfg.mode == modeCreate {
		return nil
	}

	statusBody := map[string]any{"delivery_person_id": courierID, "status": "delivered"}
	statusPath := fmt.Sprintf("/order/%s/status", created.OrderData.ID)
	if err := client.call("UpdateOrderStatus", http.MethodPut, statusPath, "", statusBody, http.StatusOK, nil); err != nil {
		return err
	}
	if cfg.mode == modeCreateDeliver {
		return nil
	}

	timelinePath := fmt.Sprintf("/order/%s/timeline", created.OrderData.ID)
	return client.call("OrderTimeline", http.MethodGet, timelinePath, "", nil, http.StatusOK, nil)
}

// call выполняет запрос, учитывает его в collector и декодирует ответ в out.
func (c *apiClient) call(method, httpMethod, path, idempotencyKey string, body any, want int, out any) error {
	start := time.Now()
	status, err := c.do(httpMethod, path, idempotencyKey, body, out)

	code := strconv.Itoa(status)
	if status == 0 {
		code = "TRANSPORT"
	}
	ok := err == nil && status == want
	c.col.record(method, time.Since(start), code, ok)

	if err != nil {
		return err
	}
	if status != want {
		return fmt.Errorf("%s: unexpected status %d, want %d", method, status, want)
	}
	return nil
}

func (c *apiClient) do(httpMethod, path, idempotencyKey string, body, out any) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
		return resp.StatusCode, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
