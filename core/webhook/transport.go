package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Embed is a structured annotation attached to a delivered message,
// distinct from the plain text body
type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// FilePayload is a binary attachment for a delivery
type FilePayload struct {
	Name     string
	Data     []byte
	MimeType string
}

// Transport performs exactly one outbound delivery attempt per invocation.
// Retry policy, if any, belongs to the caller.
type Transport interface {
	Send(ctx context.Context, content string, file *FilePayload, embeds []Embed) (string, error)
}

// discordWebhook implements Transport against a Discord-compatible webhook URL
type discordWebhook struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordWebhook creates a webhook transport for the given URL.
// An empty URL is tolerated at construction time; Send fails with
// ErrWebhookNotConfigured before attempting any request.
func NewDiscordWebhook(webhookURL string, timeout time.Duration) Transport {
	return &discordWebhook{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// jsonPayload is the request body for deliveries without a file attachment
type jsonPayload struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Send performs a single delivery attempt. A file attachment selects the
// multipart encoding; otherwise a plain JSON body is sent. The response body
// is returned verbatim on success.
func (t *discordWebhook) Send(ctx context.Context, content string, file *FilePayload, embeds []Embed) (string, error) {
	if t.webhookURL == "" {
		return "", ErrWebhookNotConfigured
	}

	var body io.Reader
	var contentType string
	var err error

	if file != nil {
		body, contentType, err = t.buildMultipartBody(content, file)
	} else {
		body, contentType, err = t.buildJSONBody(content, embeds)
	}
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.webhookURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &DeliveryError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return string(respBody), nil
}

// buildMultipartBody encodes content and file as a multipart form.
// Embeds never travel alongside a file; the queue folds them into the
// content text before calling Send.
func (t *discordWebhook) buildMultipartBody(content string, file *FilePayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("content", content); err != nil {
		return nil, "", fmt.Errorf("failed to write content field: %w", err)
	}

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write file data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// buildJSONBody encodes content and embeds as a JSON payload
func (t *discordWebhook) buildJSONBody(content string, embeds []Embed) (io.Reader, string, error) {
	payload := jsonPayload{
		Content: content,
		Embeds:  embeds,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	return bytes.NewReader(data), "application/json", nil
}
