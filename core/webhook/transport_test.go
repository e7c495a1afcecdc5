package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSend_JSONDeliveryWithoutFile(t *testing.T) {
	var gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"123"}`))
	}))
	defer server.Close()

	transport := NewDiscordWebhook(server.URL, 5*time.Second)

	body, err := transport.Send(context.Background(), "hello", nil, []Embed{{Title: "t", Description: "d"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != `{"id":"123"}` {
		t.Errorf("unexpected response body: %q", body)
	}

	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}

	var payload struct {
		Content string  `json:"content"`
		Embeds  []Embed `json:"embeds"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("request body is not valid JSON: %v", err)
	}
	if payload.Content != "hello" {
		t.Errorf("unexpected content: %q", payload.Content)
	}
	if len(payload.Embeds) != 1 || payload.Embeds[0].Title != "t" {
		t.Errorf("unexpected embeds: %v", payload.Embeds)
	}
}

func TestSend_MultipartDeliveryWithFile(t *testing.T) {
	var gotContent string
	var gotFileName string
	var gotFileData []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart content type, got %q", r.Header.Get("Content-Type"))
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		gotContent = r.FormValue("content")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		defer file.Close()
		gotFileName = header.Filename
		gotFileData, _ = io.ReadAll(file)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewDiscordWebhook(server.URL, 5*time.Second)

	file := &FilePayload{Name: "cfg.ini", Data: []byte("[rage]\nenabled=0")}
	if _, err := transport.Send(context.Background(), "📁 New config uploaded: cfg.ini", file, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotContent != "📁 New config uploaded: cfg.ini" {
		t.Errorf("unexpected content field: %q", gotContent)
	}
	if gotFileName != "cfg.ini" {
		t.Errorf("unexpected file name: %q", gotFileName)
	}
	if string(gotFileData) != "[rage]\nenabled=0" {
		t.Errorf("unexpected file data: %q", gotFileData)
	}
}

func TestSend_NonSuccessStatusIsDeliveryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer server.Close()

	transport := NewDiscordWebhook(server.URL, 5*time.Second)

	_, err := transport.Send(context.Background(), "hello", nil, nil)
	if err == nil {
		t.Fatal("expected a delivery error")
	}
	if !IsDeliveryError(err) {
		t.Fatalf("expected a DeliveryError, got %T", err)
	}

	var deliveryErr *DeliveryError
	errors.As(err, &deliveryErr)
	if deliveryErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("unexpected status code: %d", deliveryErr.StatusCode)
	}
	if !strings.Contains(deliveryErr.Body, "rate limited") {
		t.Errorf("upstream body not preserved: %q", deliveryErr.Body)
	}
}

func TestSend_UnconfiguredURLFailsBeforeAnyRequest(t *testing.T) {
	transport := NewDiscordWebhook("", 5*time.Second)

	_, err := transport.Send(context.Background(), "hello", nil, nil)
	if !errors.Is(err, ErrWebhookNotConfigured) {
		t.Fatalf("expected ErrWebhookNotConfigured, got %v", err)
	}
}
