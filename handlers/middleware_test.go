package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	newReq := func(remote string, headers map[string]string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req
	}

	cases := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"remote addr only", newReq("203.0.113.9:51234", nil), "203.0.113.9"},
		{"x-forwarded-for first hop", newReq("10.0.0.1:80", map[string]string{
			"X-Forwarded-For": "198.51.100.7, 10.0.0.1",
		}), "198.51.100.7"},
		{"x-real-ip", newReq("10.0.0.1:80", map[string]string{
			"X-Real-IP": "198.51.100.8",
		}), "198.51.100.8"},
		{"fly client ip", newReq("10.0.0.1:80", map[string]string{
			"Fly-Client-IP": "198.51.100.9",
		}), "198.51.100.9"},
		{"forwarded wins over real-ip", newReq("10.0.0.1:80", map[string]string{
			"X-Forwarded-For": "198.51.100.7",
			"X-Real-IP":       "198.51.100.8",
		}), "198.51.100.7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClientIP(tc.req); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
