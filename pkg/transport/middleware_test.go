package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHeader(name, value string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			req.Header.Set(name, value)
			return next(req)
		}
	}
}

func recordOrder(name string, order *[]string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			*order = append(*order, name+">")
			resp, err := next(req)
			*order = append(*order, "<"+name)
			return resp, err
		}
	}
}

func stubResponse(status int, body string) RoundTripperFunc {
	return func(req *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		rec.WriteHeader(status)
		rec.WriteString(body)
		resp := rec.Result()
		resp.Request = req
		return resp, nil
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return stubResponse(http.StatusOK, "")(req)
	})

	rt := Chain(base, recordOrder("a", &order), recordOrder("b", &order), nil, recordOrder("c", &order))

	req := httptest.NewRequest(http.MethodGet, "https://api.digipost.no/", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"a>", "b>", "c>", "base", "<c", "<b", "<a"}, order)
}

func TestChain_NoMiddleware(t *testing.T) {
	rt := Chain(stubResponse(http.StatusTeapot, "short and stout"))

	req := httptest.NewRequest(http.MethodGet, "https://api.digipost.no/", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestChain_NilBase(t *testing.T) {
	rt := Chain(nil)
	assert.NotNil(t, rt)
}

func TestChain_MiddlewareSeesHeadersFromOuter(t *testing.T) {
	var seen string
	inspect := func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get("X-Outer")
			return next(req)
		}
	}

	rt := Chain(stubResponse(http.StatusOK, "ok"), setHeader("X-Outer", "1"), inspect)
	req := httptest.NewRequest(http.MethodGet, "https://api.digipost.no/", strings.NewReader(""))
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "1", seen)
	assert.Empty(t, req.Header.Get("X-Outer"), "caller request must not be mutated")
}
