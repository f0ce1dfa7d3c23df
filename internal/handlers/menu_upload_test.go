package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bitesquicky/internal/models"
)

func multipartRequest(t *testing.T, method, path string, fields [][2]string, imageName string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range fields {
		_ = writer.WriteField(f[0], f[1])
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		_, _ = part.Write([]byte("\x89PNG fake"))
	}
	_ = writer.Close()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestParseMenuItemRequest_PicksLastCheckboxValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	req := multipartRequest(t, http.MethodPut, "/admin/api/menu/1", [][2]string{
		{"isAvailable", "false"},
		{"isAvailable", "on"},
		{"price", "120"},
		{"category", " Snacks "},
	}, "")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	parsed, err := parseMenuItemRequest(c)
	if err != nil {
		t.Fatalf("parseMenuItemRequest returned error: %v", err)
	}
	if !parsed.IsAvailableSet || !parsed.IsAvailable {
		t.Fatalf("expected isAvailable=true, got %+v", parsed)
	}
	if !parsed.PriceSet || parsed.Price != 120 {
		t.Fatalf("expected price=120, got %+v", parsed)
	}
	if parsed.Category != models.CategorySnacks || parsed.TitleSet {
		t.Fatalf("unexpected parse %+v", parsed)
	}
}

func TestParseMenuItemRequest_RejectsBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		fields [][2]string
		image  string
	}{
		{"fractional price", [][2]string{{"price", "12.50"}}, ""},
		{"bad bool", [][2]string{{"pinned", "maybe"}}, ""},
		{"gif", nil, "menu.gif"},
		{"no extension", nil, "menu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = multipartRequest(t, http.MethodPost, "/admin/api/menu", tt.fields, tt.image)
			if _, err := parseMenuItemRequest(c); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestMenuItemLifecycle(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/admin/api/menu", [][2]string{
		{"title", "Samosa"},
		{"price", "40"},
		{"category", "snacks"},
	}, "samosa.PNG"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.MenuItem
	decode(t, w, &created)
	if created.ImageURL == nil || !strings.HasPrefix(*created.ImageURL, "/public/uploads/menu-images/") || !strings.HasSuffix(*created.ImageURL, ".png") {
		t.Fatalf("expected stored image url, got %v", created.ImageURL)
	}
	if !created.IsAvailable {
		t.Fatalf("expected new items to default to available")
	}

	w = f.do(t, http.MethodPut, "/admin/api/menu/"+created.ID.Hex(), map[string]interface{}{"price": 45, "removeImage": true})
	var updated models.MenuItem
	decode(t, w, &updated)
	if w.Code != http.StatusOK || updated.Price != 45 || updated.ImageURL != nil {
		t.Fatalf("unexpected update %d %+v", w.Code, updated)
	}
	if len(f.blobs.deleted) != 1 || f.blobs.deleted[0] != *created.ImageURL {
		t.Fatalf("expected old image removed, got %v", f.blobs.deleted)
	}

	w = f.do(t, http.MethodPut, "/admin/api/menu/"+created.ID.Hex(), map[string]interface{}{"price": -1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative price, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/admin/api/menu", [][2]string{
		{"title", "Tea"},
		{"category", "drinks"},
		{"price", "20"},
	}, ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", w.Code)
	}

	w = f.do(t, http.MethodDelete, "/admin/api/menu/"+created.ID.Hex(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, ok := f.store.menu[created.ID]; ok {
		t.Fatalf("expected item removed")
	}
}
