package utils

import (
	"errors"
	"testing"
)

func TestExtractSubdomain(t *testing.T) {
	const base = "bookline.local"

	tests := []struct {
		name    string
		host    string
		want    string
		wantErr bool
	}{
		{name: "plain subdomain", host: "acme.bookline.local", want: "acme"},
		{name: "with port", host: "acme.bookline.local:8080", want: "acme"},
		{name: "uppercase host", host: "ACME.Bookline.LOCAL", want: "acme"},
		{name: "hyphenated label", host: "salon-23.bookline.local", want: "salon-23"},
		{name: "surrounding whitespace", host: "  acme.bookline.local ", want: "acme"},
		{name: "empty host", host: "", wantErr: true},
		{name: "bare base domain", host: "bookline.local", wantErr: true},
		{name: "base domain with port", host: "bookline.local:8080", wantErr: true},
		{name: "bare IPv4", host: "127.0.0.1", wantErr: true},
		{name: "unrelated domain", host: "acme.elsewhere.io", wantErr: true},
		{name: "suffix without dot", host: "acmebookline.local", wantErr: true},
		{name: "nested label", host: "a.b.bookline.local", wantErr: true},
		{name: "underscore in label", host: "bad_label.bookline.local", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSubdomain(tt.host, base)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractSubdomain(%q) = %q, want error", tt.host, got)
				}
				if !errors.Is(err, ErrInvalidHost) {
					t.Errorf("ExtractSubdomain(%q) error = %v, want ErrInvalidHost", tt.host, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractSubdomain(%q) unexpected error: %v", tt.host, err)
			}
			if got != tt.want {
				t.Errorf("ExtractSubdomain(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}
