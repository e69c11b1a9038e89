package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/realibuddy/citecheck/internal/model"
)

func TestNewProxyFunc_ExplicitProxies(t *testing.T) {
	fn := NewProxyFunc("http://proxy1:8080", "http://proxy2:8443", "")

	httpsReq := httptest.NewRequest(http.MethodGet, "https://api.openalex.org/works", nil)
	u, err := fn(httpsReq)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "proxy2:8443" {
		t.Errorf("https proxy = %v", u)
	}

	httpReq := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	u, err = fn(httpReq)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "proxy1:8080" {
		t.Errorf("http proxy = %v", u)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	fn := NewProxyFunc("http://proxy1:8080", "", "internal.example.com, .corp.local")

	cases := []struct {
		url    string
		bypass bool
	}{
		{"http://internal.example.com/api", true},
		{"http://sub.corp.local/api", true},
		{"http://api.openalex.org/works", false},
		{"http://notinternal.example.com.evil.org/", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.url, nil)
		u, err := fn(req)
		if err != nil {
			t.Fatalf("%s: %v", tc.url, err)
		}
		if tc.bypass && u != nil {
			t.Errorf("%s: expected direct connection, got proxy %v", tc.url, u)
		}
		if !tc.bypass && u == nil {
			t.Errorf("%s: expected proxy, got direct connection", tc.url)
		}
	}
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(model.HTTPConfig{Timeout: 7 * time.Second, HTTPProxy: "http://proxy:3128"})
	if c.Timeout != 7*time.Second {
		t.Errorf("timeout = %v", c.Timeout)
	}
	if c.Transport == nil {
		t.Error("transport not configured")
	}
}
