package middlewares

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/healthz", "/healthz"},
		{"/v1/provision", "/v1/provision"},
		{"/v1/profiles/u-123", "/v1/profiles/:param"},
		{"/v1/guides", "/v1/guides"},
		{"/v1/guides/tomatoes", "/v1/guides/:param"},
		{"/v1/guides/tomatoes?x=1", "/v1/guides/:param"},
	}
	for _, tc := range cases {
		if got := normalizePath(tc.in); got != tc.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
