package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStoreConfig_SendsMultipartFormAndReturnsID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/store-config" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}

		if got := r.FormValue("name"); got != "rage config" {
			t.Errorf("unexpected name field: %q", got)
		}
		if got := r.FormValue("tags"); got != "rage,hvh" {
			t.Errorf("unexpected tags field: %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		defer file.Close()

		if header.Filename != "cfg.ini" {
			t.Errorf("unexpected filename: %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "[rage]" {
			t.Errorf("unexpected file data: %q", data)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"id-42"}`))
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second)

	id, err := client.StoreConfig(context.Background(), StoreConfigRequest{
		FileName: "cfg.ini",
		FileData: []byte("[rage]"),
		Name:     "rage config",
		Tags:     []string{"rage", "hvh"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "id-42" {
		t.Errorf("unexpected id: %q", id)
	}
}

func TestStoreConfig_NonSuccessStatusIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
		w.Write([]byte("disk full"))
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second)

	_, err := client.StoreConfig(context.Background(), StoreConfigRequest{FileName: "cfg.ini"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "507") || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error should carry status and body: %v", err)
	}
}

func TestCheckHealth(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second)

	if err := client.CheckHealth(context.Background()); err != nil {
		t.Errorf("unexpected error from healthy service: %v", err)
	}

	healthy = false
	if err := client.CheckHealth(context.Background()); err == nil {
		t.Error("expected an error from unhealthy service")
	}
}
