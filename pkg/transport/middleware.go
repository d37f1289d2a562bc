package transport

import "net/http"

// SendFunc performs one step of sending a request.
type SendFunc func(*http.Request) (*http.Response, error)

// Middleware wraps a SendFunc with additional behaviour.
type Middleware func(next SendFunc) SendFunc

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain composes middleware over base. The first middleware is the
// outermost and sees the request first. A nil base uses
// http.DefaultTransport.
func Chain(base http.RoundTripper, middleware ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	send := SendFunc(base.RoundTrip)
	for i := len(middleware) - 1; i >= 0; i-- {
		if middleware[i] == nil {
			continue
		}
		send = middleware[i](send)
	}

	return RoundTripperFunc(send)
}
