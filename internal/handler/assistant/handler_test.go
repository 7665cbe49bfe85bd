package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	assistantService "github.com/modifai/backend/internal/service/assistant"
)

type fakeRouter struct {
	chatReply assistantService.Reply
	chatErr   error

	decorateOut  []byte
	decorateErr  error
	gotPrompt    string
	gotSeed      []byte
	decorateRuns int
}

func (f *fakeRouter) Chat(_ context.Context, message string) (assistantService.Reply, error) {
	return f.chatReply, f.chatErr
}

func (f *fakeRouter) Decorate(_ context.Context, prompt string, seed []byte) ([]byte, error) {
	f.decorateRuns++
	f.gotPrompt = prompt
	f.gotSeed = seed
	if f.decorateErr != nil {
		return nil, f.decorateErr
	}
	return f.decorateOut, nil
}

func setupRouter(fake *fakeRouter) *chi.Mux {
	r := chi.NewRouter()
	New(fake).RegisterRoutes(r)
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatTextReply(t *testing.T) {
	r := setupRouter(&fakeRouter{chatReply: assistantService.Reply{Text: "use warm whites"}})

	resp := postForm(r, "/chat", url.Values{"message": {"what color goes with navy?"}})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["reply"] != "use warm whites" {
		t.Fatalf("unexpected reply: %q", body["reply"])
	}
}

func TestChatImageReply(t *testing.T) {
	r := setupRouter(&fakeRouter{chatReply: assistantService.Reply{Image: []byte("png-bytes")}})

	resp := postForm(r, "/chat", url.Values{"message": {"show me a picture of a loft"}})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}
	if resp.Body.String() != "png-bytes" {
		t.Fatalf("unexpected body: %q", resp.Body.String())
	}
}

func TestChatMissingMessage(t *testing.T) {
	r := setupRouter(&fakeRouter{})

	resp := postForm(r, "/chat", url.Values{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatUpstreamError(t *testing.T) {
	r := setupRouter(&fakeRouter{chatErr: errors.New("model unavailable")})

	resp := postForm(r, "/chat", url.Values{"message": {"hello"}})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(body["detail"], "model unavailable") {
		t.Fatalf("detail missing upstream text: %q", body["detail"])
	}
}

func TestDecorateEmptyPromptIs400(t *testing.T) {
	fake := &fakeRouter{decorateErr: assistantService.ErrEmptyPrompt}
	r := setupRouter(fake)

	resp := postForm(r, "/decorate", url.Values{"prompt": {"   "}})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDecorateBackendErrorIs500(t *testing.T) {
	r := setupRouter(&fakeRouter{decorateErr: errors.New("pipeline down")})

	resp := postForm(r, "/decorate", url.Values{"prompt": {"a bedroom"}})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestDecorateWithSeedFile(t *testing.T) {
	fake := &fakeRouter{decorateOut: []byte("generated")}
	r := setupRouter(fake)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("prompt", "add plants"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", "room.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("seed-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/decorate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if fake.gotPrompt != "add plants" {
		t.Fatalf("prompt not forwarded: %q", fake.gotPrompt)
	}
	if string(fake.gotSeed) != "seed-bytes" {
		t.Fatalf("seed not forwarded: %q", fake.gotSeed)
	}
	if resp.Body.String() != "generated" {
		t.Fatalf("unexpected body: %q", resp.Body.String())
	}
}
