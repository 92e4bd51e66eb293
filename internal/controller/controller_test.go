package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	askErr   error
	lastAsk  *dto.AskRequest
	reset    string
	history  *dto.ThreadHistoryResponse
	threadID string
}

func (s *stubChatService) Ask(_ context.Context, req *dto.AskRequest) (*dto.AnswerResponse, error) {
	s.lastAsk = req
	if s.askErr != nil {
		return nil, s.askErr
	}
	return &dto.AnswerResponse{ThreadId: "t", Reasoning: "because", Response: "42"}, nil
}

func (s *stubChatService) History(_ context.Context, threadId string) (*dto.ThreadHistoryResponse, error) {
	s.threadID = threadId
	return s.history, nil
}

func (s *stubChatService) Reset(_ context.Context, threadId string) error {
	s.reset = threadId
	return nil
}

type stubIngestionService struct {
	uploaded bool
	files    []dto.UploadedFile
	queued   bool
}

func (s *stubIngestionService) Ingest(_ context.Context, files []dto.UploadedFile) (bool, error) {
	s.files = files
	return s.uploaded, nil
}

func (s *stubIngestionService) Enqueue(_ context.Context, files []dto.UploadedFile) (*dto.EnqueueResponse, error) {
	s.files = files
	s.queued = true
	return &dto.EnqueueResponse{JobId: "job-1", Files: len(files)}, nil
}

func newApp(chat *stubChatService, ingest *stubIngestionService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	open := func(c *fiber.Ctx) error { return c.Next() }
	NewChatController(chat).RegisterRoutes(api, open)
	NewDocumentController(ingest).RegisterRoutes(api, open)
	return app
}

func decode(t *testing.T, res *http.Response) serverutils.BaseResponse {
	t.Helper()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out serverutils.BaseResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChatController_Ask(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		askErr     error
		wantStatus int
	}{
		{name: "answers", body: `{"thread_id":"t","question":"what?"}`, wantStatus: http.StatusOK},
		{name: "missing question", body: `{"thread_id":"t"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{"question":`, wantStatus: http.StatusBadRequest},
		{name: "model unreachable", body: `{"question":"q"}`, askErr: fmt.Errorf("generate answer: %w: %w", rag.ErrModelInvocation, io.EOF), wantStatus: http.StatusBadGateway},
		{name: "history store down", body: `{"question":"q"}`, askErr: fmt.Errorf("%w: redis", rag.ErrHistory), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &stubChatService{askErr: tt.askErr}
			app := newApp(chat, &stubIngestionService{})

			res, err := app.Test(jsonRequest(http.MethodPost, "/api/chat/v1", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.StatusCode)

			out := decode(t, res)
			assert.Equal(t, tt.wantStatus == http.StatusOK, out.Success)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "what?", chat.lastAsk.Question)
				data := out.Data.(map[string]interface{})
				assert.Equal(t, "42", data["response"])
				assert.Equal(t, "because", data["reasoning"])
			}
		})
	}
}

func TestChatController_HistoryAndReset(t *testing.T) {
	chat := &stubChatService{history: &dto.ThreadHistoryResponse{ThreadId: "abc", Turns: []dto.TurnResponse{}}}
	app := newApp(chat, &stubIngestionService{})

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/chat/v1/abc/history", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "abc", chat.threadID)

	res, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/chat/v1/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "abc", chat.reset)
}

func multipartRequest(t *testing.T, path string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestDocumentController_Upload(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		files      map[string]string
		uploaded   bool
		wantStatus int
		wantQueued bool
	}{
		{name: "indexed", path: "/api/documents/v1/upload", files: map[string]string{"a.pdf": "%PDF"}, uploaded: true, wantStatus: http.StatusOK},
		{name: "nothing readable", path: "/api/documents/v1/upload", files: map[string]string{"a.PDF": "%PDF"}, uploaded: false, wantStatus: http.StatusUnprocessableEntity},
		{name: "rejects non pdf", path: "/api/documents/v1/upload", files: map[string]string{"notes.txt": "hi"}, wantStatus: http.StatusBadRequest},
		{name: "no files", path: "/api/documents/v1/upload", files: map[string]string{}, wantStatus: http.StatusBadRequest},
		{name: "async", path: "/api/documents/v1/upload?async=true", files: map[string]string{"a.pdf": "%PDF"}, wantStatus: http.StatusAccepted, wantQueued: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingest := &stubIngestionService{uploaded: tt.uploaded}
			app := newApp(&stubChatService{}, ingest)

			res, err := app.Test(multipartRequest(t, tt.path, tt.files))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantQueued, ingest.queued)
			if tt.wantStatus == http.StatusOK {
				require.Len(t, ingest.files, 1)
				assert.Equal(t, "a.pdf", ingest.files[0].Name)
				assert.Equal(t, []byte("%PDF"), ingest.files[0].Data)
			}
		})
	}
}
