package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listRequest struct {
	Symbols string `query:"symbols" validate:"required,max=400"`
	Mins    int    `query:"mins" default:"30" validate:"gte=1,lte=1440"`
}

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestReadAndValidateRequest(t *testing.T) {
	c, _ := newContext("/x?symbols=MSFT")
	var req listRequest
	require.NoError(t, ReadAndValidateRequest(c, &req))
	assert.Equal(t, "MSFT", req.Symbols)
	assert.Equal(t, 30, req.Mins)

	c, _ = newContext("/x")
	req = listRequest{}
	err := ReadAndValidateRequest(c, &req)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "symbols is required", appErr.Message)
	assert.Equal(t, "symbols", appErr.Field)
}

func TestAppErrorResponse(t *testing.T) {
	c, rec := newContext("/x")
	require.NoError(t, AppErrorResponse(c, BadRequestError("bad symbols")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"bad symbols"}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))

	c, rec = newContext("/x")
	require.NoError(t, AppErrorResponse(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}

func TestJSONBlobResponseVerbatim(t *testing.T) {
	c, rec := newContext("/x")
	body := []byte(`{"b":1,"a":2}`)
	require.NoError(t, JSONBlobResponse(c, http.StatusOK, body))
	assert.Equal(t, body, rec.Body.Bytes())
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MSFT", r.URL.Query().Get("symbol"))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":"error","message":"out of credits"}`))
	}))
	defer srv.Close()

	cl := NewClient()
	var out map[string]interface{}
	err := cl.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		QueryParams: map[string][]string{"symbol": {"MSFT"}},
	}, &out)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Contains(t, string(se.Body), "out of credits")
}
