package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, reqID string, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if reqID != "" {
		req.Header.Set(HeaderRequestID, reqID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w, body
}

func TestRequestID(t *testing.T) {
	const given = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "uuid kept", header: given, wantSame: true},
		{name: "missing generated"},
		{name: "junk replaced", header: "forged\nline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, tt.header, func(c *gin.Context) { Success(c, http.StatusOK, "ok") })

			got := w.Header().Get(HeaderRequestID)
			if got == "" || body.Metadata.RequestID != got {
				t.Fatalf("header %q, metadata %q", got, body.Metadata.RequestID)
			}
			if (got == tt.header) != tt.wantSame {
				t.Errorf("request id = %q for header %q", got, tt.header)
			}
		})
	}
}

func TestFailWithFields(t *testing.T) {
	w, body := serve(t, "", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrExamFormatInvalid, map[string]string{"cell": "B1"})
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
	if body.Error == nil || body.Error.Code != ErrExamFormatInvalid || body.Error.Fields["cell"] != "B1" {
		t.Fatalf("error = %+v", body.Error)
	}
	if body.Error.Message != GetMessage(ErrExamFormatInvalid) {
		t.Errorf("message = %q", body.Error.Message)
	}
}

func TestFailWithData(t *testing.T) {
	_, body := serve(t, "", func(c *gin.Context) {
		FailWithData(c, http.StatusBadGateway, ErrResponseNotRecorded, map[string]int{"id": 3})
	})
	if body.Error == nil || body.Error.Code != ErrResponseNotRecorded || body.Data == nil {
		t.Errorf("body = %+v", body)
	}
}
