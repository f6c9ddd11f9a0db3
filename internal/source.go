package lithotop

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
)

// ResolveBaseURL tries URL variants of raw until one answers /api/machines.
// A raw value without a scheme is common on the command line ("litho-srv:8000").
func ResolveBaseURL(ctx context.Context, raw string, timeout time.Duration) (*url.URL, error) {
	base, err := parseLoose(raw)
	if err != nil {
		return nil, err
	}

	for _, variant := range generateURLVariants(base) {
		log.Printf("Trying API at %s", variant)
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		_, err := NewAPIClient(variant, timeout, nil).Machines(probeCtx)
		cancel()
		if err != nil {
			log.Printf("API check failed: %v", err)
			continue
		}
		log.Printf("✓ Found API at %s", variant)
		return variant, nil
	}
	return nil, fmt.Errorf("no API answered at %s", raw)
}

func parseLoose(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("api url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("invalid api url %q: missing host", raw)
	}
	return u, nil
}

// generateURLVariants creates different URL combinations to try
func generateURLVariants(base *url.URL) []*url.URL {
	var variants []*url.URL
	hostname := base.Hostname()
	port := base.Port()
	path := strings.TrimSuffix(base.Path, "/")

	// Schemes to try: the given one first
	schemes := []string{"http", "https"}
	if base.Scheme == "https" {
		schemes = []string{"https", "http"}
	}

	// Ports to try: the given one only, otherwise the API default then the scheme default
	ports := []string{port}
	if port == "" {
		ports = []string{"8000", ""}
	}

	seen := make(map[string]bool)
	for _, scheme := range schemes {
		for _, p := range ports {
			host := hostname
			if strings.Contains(host, ":") {
				host = "[" + host + "]"
			}
			if p != "" {
				host += ":" + p
			}
			u := &url.URL{Scheme: scheme, Host: host, Path: path}
			if !seen[u.String()] {
				seen[u.String()] = true
				variants = append(variants, u)
			}
		}
	}

	return variants
}
