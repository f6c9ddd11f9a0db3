package lithotop

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jondoveston/lithotop/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variantStrings(t *testing.T, raw string) []string {
	t.Helper()
	base, err := parseLoose(raw)
	require.NoError(t, err)
	var out []string
	for _, u := range generateURLVariants(base) {
		out = append(out, u.String())
	}
	return out
}

func TestGenerateURLVariants(t *testing.T) {
	assert.Equal(t, []string{
		"http://litho-srv:8000",
		"http://litho-srv",
		"https://litho-srv:8000",
		"https://litho-srv",
	}, variantStrings(t, "litho-srv"))

	assert.Equal(t, []string{
		"https://litho-srv:9000/telemetry",
		"http://litho-srv:9000/telemetry",
	}, variantStrings(t, "https://litho-srv:9000/telemetry/"))
}

func TestParseLooseRejectsEmpty(t *testing.T) {
	_, err := parseLoose("  ")
	assert.Error(t, err)
}

func TestResolveBaseURL(t *testing.T) {
	srv := httptest.NewServer(fixture.New(fixture.Default()))
	defer srv.Close()

	// without a scheme the http variant on the given port answers
	raw := strings.TrimPrefix(srv.URL, "http://")
	u, err := ResolveBaseURL(context.Background(), raw, time.Second)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, u.String())
}

func TestResolveBaseURLFails(t *testing.T) {
	srv := httptest.NewServer(fixture.New(fixture.Default()))
	addr := srv.URL
	srv.Close()

	_, err := ResolveBaseURL(context.Background(), addr, 200*time.Millisecond)
	assert.Error(t, err)
}
