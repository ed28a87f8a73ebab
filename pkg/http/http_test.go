package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/pkg/http/middleware"
	applogger "PairScope/pkg/logger"
)

type pairQuery struct {
	Y      string `query:"y" validate:"required,symbol"`
	X      string `query:"x" validate:"required,symbol,nefield=Y"`
	Policy string `query:"policy" default:"bounded" validate:"oneof=bounded scan"`
}

func bindQuery(t *testing.T, target string) (*pairQuery, []ValidationError) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	q := &pairQuery{}
	return q, ReadAndValidateRequest(c, q)
}

func TestReadAndValidateRequest(t *testing.T) {
	q, errs := bindQuery(t, "/?y=M%26M&x=BAJAJ-AUTO")
	require.Nil(t, errs)
	assert.Equal(t, "M&M", q.Y)
	assert.Equal(t, "bounded", q.Policy)

	_, errs = bindQuery(t, "/?x=TCS&policy=loose")
	require.Len(t, errs, 2)
	assert.Equal(t, ValidationError{Code: "ERR_REQUIRED", Field: "y", Message: "y is required"}, errs[0])
	assert.Equal(t, "ERR_ONEOF", errs[1].Code)
	assert.Equal(t, "policy", errs[1].Field)
	assert.Equal(t, []string{"bounded", "scan"}, errs[1].Params["options"])

	_, errs = bindQuery(t, "/?y=TCS&x=TCS")
	require.Len(t, errs, 1)
	assert.Equal(t, "x must differ from y", errs[0].Message)

	_, errs = bindQuery(t, "/?y=TCS&x=a%20b")
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_SYMBOL", errs[0].Code)
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	cause := errors.New("upstream reset")
	require.NoError(t, AppErrorResponse(c, BadGatewayError("price provider unavailable").WithError(cause)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadGateway, body.Status)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ERR_BAD_GATEWAY", body.Data[0].Code)
	assert.NotContains(t, rec.Body.String(), "upstream reset")

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, cause))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAppErrorUnwraps(t *testing.T) {
	cause := errors.New("no data")
	err := error(NotFoundError("unknown symbol").WithError(cause))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unknown symbol: no data", err.Error())
}

func TestClientSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pairscope-test", r.Header.Get("User-Agent"))
		if r.URL.Query().Get("symbol") == "TCS" {
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no data"}`))
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("pairscope-test"))
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		QueryParams: map[string][]string{"symbol": {"TCS"}},
	}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)

	err = c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &out)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestClientRetriesTemporaryFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch {
		case r.URL.Path == "/flaky" && calls == 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case r.URL.Path == "/flaky":
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(WithRetry(2, time.Millisecond))
	var out map[string]bool
	require.NoError(t, c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL + "/flaky"}, &out))
	assert.Equal(t, 2, calls)
	assert.True(t, out["ok"])

	calls = 0
	err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL + "/gone"}, &out)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRecoverMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(middleware.Recover(applogger.Nop()))
	e.GET("/boom", func(c echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_INTERNAL")
}

func TestServerServesRoutesAndMetrics(t *testing.T) {
	ping := RouteFunc(func(e *echo.Echo) {
		e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	})
	srv := NewServer(applogger.Nop(), []Handler{ping},
		WithHost("127.0.0.1"),
		WithPort(0),
		WithCORS(false),
		WithMetrics("/metrics", prometheus.NewRegistry()),
	)
	require.NoError(t, srv.Start())
	defer func() { require.NoError(t, srv.Stop(context.Background())) }()

	base := "http://" + srv.Addr()
	resp, err := http.Get(base + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body strings.Builder
	_, err = io.Copy(&body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "pairscope_http_requests_total")
}

func TestServerStartReportsBindFailure(t *testing.T) {
	first := NewServer(applogger.Nop(), nil, WithHost("127.0.0.1"), WithPort(0), WithMetrics("", prometheus.NewRegistry()))
	require.NoError(t, first.Start())
	defer func() { _ = first.Stop(context.Background()) }()

	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	second := NewServer(applogger.Nop(), nil, WithHost("127.0.0.1"), WithPort(p), WithMetrics("", prometheus.NewRegistry()))
	assert.Error(t, second.Start())
}
