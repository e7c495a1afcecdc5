package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/db"
	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
	"github.com/BuyNemesis/nemesis-backend/core/configfiles"
)

func setupConfigHandlerTest(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.NewInMemoryDB()
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}

	repo, err := configfiles.NewSQLiteMetadataRepository(testDB)
	if err != nil {
		testDB.Close()
		t.Fatalf("Failed to create metadata repository: %v", err)
	}

	fileStore, err := configfiles.NewDiskFileStore(t.TempDir())
	if err != nil {
		testDB.Close()
		t.Fatalf("Failed to create file store: %v", err)
	}

	manager := configfiles.NewStorageManager(logging.NopLogger, repo, fileStore)
	handler := NewConfigHandler(logging.NopLogger, manager)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/store-config", handler.StoreConfig)
	api.GET("/configs", handler.ListConfigs)
	api.GET("/configs/:id", handler.GetConfig)
	api.GET("/configs/:id/download", handler.DownloadConfig)
	api.DELETE("/configs/:id", handler.DeleteConfig)

	cleanup := func() {
		testDB.Close()
	}

	return router, cleanup
}

func storeRequest(t *testing.T, fileName string, fileData []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			t.Fatalf("failed to write field %s: %v", field, err)
		}
	}

	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("failed to write file data: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/store-config", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestStoreConfig_RoundTrip(t *testing.T) {
	router, cleanup := setupConfigHandlerTest(t)
	defer cleanup()

	req := storeRequest(t, "semirage.ini", []byte("[rage]\nfov=30"), map[string]string{
		"name":   "semirage",
		"author": "tester",
		"tags":   "rage, semi",
	})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var stored struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &stored); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("expected an ID in the response")
	}

	// Download the file back
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/configs/"+stored.ID+"/download", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if recorder.Body.String() != "[rage]\nfov=30" {
		t.Errorf("unexpected downloaded bytes: %q", recorder.Body.String())
	}

	// Metadata should now show one download
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/configs/"+stored.ID, nil))

	var meta configfiles.Metadata
	if err := json.Unmarshal(recorder.Body.Bytes(), &meta); err != nil {
		t.Fatalf("metadata response is not valid JSON: %v", err)
	}
	if meta.Downloads != 1 {
		t.Errorf("expected 1 download, got %d", meta.Downloads)
	}
	if meta.Name != "semirage" || len(meta.Tags) != 2 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestStoreConfig_RejectsNonIniFiles(t *testing.T) {
	router, cleanup := setupConfigHandlerTest(t)
	defer cleanup()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, storeRequest(t, "notes.txt", []byte("hi"), nil))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestStoreConfig_RequiresFile(t *testing.T) {
	router, cleanup := setupConfigHandlerTest(t)
	defer cleanup()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, storeRequest(t, "", nil, map[string]string{"name": "empty"}))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestGetConfig_UnknownIDIsNotFound(t *testing.T) {
	router, cleanup := setupConfigHandlerTest(t)
	defer cleanup()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/configs/nope", nil))

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestDeleteConfig(t *testing.T) {
	router, cleanup := setupConfigHandlerTest(t)
	defer cleanup()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, storeRequest(t, "gone.ini", []byte("x"), nil))

	var stored struct {
		ID string `json:"id"`
	}
	json.Unmarshal(recorder.Body.Bytes(), &stored)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/api/configs/"+stored.ID, nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/api/configs/"+stored.ID, nil))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a second delete, got %d", recorder.Code)
	}
}

func TestListConfigs_EmptyStoreReturnsEmptyArray(t *testing.T) {
	router, cleanup := setupConfigHandlerTest(t)
	defer cleanup()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/configs", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var resp struct {
		Configs []configfiles.Metadata `json:"configs"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Configs == nil {
		t.Error("configs should be an empty array, not null")
	}
}
