package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// StoreConfigRequest carries a config file and its metadata to the storage service
type StoreConfigRequest struct {
	FileName    string
	FileData    []byte
	Name        string
	Description string
	Author      string
	Tags        []string
}

// ServiceClient handles communication with the config storage service
type ServiceClient interface {
	// StoreConfig uploads a config file with metadata and returns the
	// identifier issued by the storage service
	StoreConfig(ctx context.Context, request StoreConfigRequest) (string, error)

	// CheckHealth probes the storage service health endpoint
	CheckHealth(ctx context.Context) error
}

// serviceClient implements ServiceClient using HTTP
type serviceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServiceClient creates a new HTTP client for the storage service
func NewServiceClient(baseURL string, timeout time.Duration) ServiceClient {
	return &serviceClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// storeConfigResponse is the success body returned by the store endpoint
type storeConfigResponse struct {
	ID string `json:"id"`
}

// StoreConfig uploads a config file to the storage service
func (s *serviceClient) StoreConfig(ctx context.Context, request StoreConfigRequest) (string, error) {
	url := fmt.Sprintf("%s/api/store-config", s.baseURL)

	// Create multipart form
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        request.Name,
		"description": request.Description,
		"author":      request.Author,
		"tags":        strings.Join(request.Tags, ","),
	}
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return "", fmt.Errorf("failed to write %s field: %w", field, err)
		}
	}

	part, err := writer.CreateFormFile("file", request.FileName)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(request.FileData); err != nil {
		return "", fmt.Errorf("failed to write file data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage service returned status %d: %s", resp.StatusCode, string(body))
	}

	var stored storeConfigResponse
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return stored.ID, nil
}

// CheckHealth probes the storage service health endpoint
func (s *serviceClient) CheckHealth(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", s.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("storage service returned status %d", resp.StatusCode)
	}

	return nil
}
