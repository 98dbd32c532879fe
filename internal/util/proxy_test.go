package util

import (
	"net/http"
	"net/url"
	"testing"
)

func TestNewProxyFunc_SchemeSelection(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "http://secure:8443", "")

	req := &http.Request{URL: &url.URL{Scheme: "https", Host: "example.com"}}
	got, err := proxy(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Host != "secure:8443" {
		t.Errorf("expected https proxy, got %v", got)
	}

	req = &http.Request{URL: &url.URL{Scheme: "http", Host: "example.com"}}
	got, _ = proxy(req)
	if got.Host != "plain:8080" {
		t.Errorf("expected http proxy, got %v", got)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "", "internal.example, .corp")

	for _, host := range []string{"internal.example", "api.internal.example", "svc.corp"} {
		req := &http.Request{URL: &url.URL{Scheme: "http", Host: host}}
		got, err := proxy(req)
		if err != nil || got != nil {
			t.Errorf("expected %s to bypass proxy, got %v (%v)", host, got, err)
		}
	}
}
