package securitas

import "testing"

func TestURLForCountry(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"ES", "https://customers.securitasdirect.es/owa-api/graphql"},
		{"es", "https://customers.securitasdirect.es/owa-api/graphql"},
		{"GB", "https://customers.verisure.co.uk/owa-api/graphql"},
		{"AR", "https://customers.verisure.com.ar/owa-api/graphql"},
		// Unknown countries fall back to the template
		{"NO", "https://customers.securitasdirect.NO/owa-api/graphql"},
	}

	for _, tt := range tests {
		if got := URLForCountry(tt.country); got != tt.want {
			t.Errorf("URLForCountry(%q) = %q, want %q", tt.country, got, tt.want)
		}
	}
}

func TestLanguageForCountry(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"ES", "es"},
		{"CL", "es"},
		{"FR", "fr"},
		{"gb", "en"},
		{"XX", "en"},
	}

	for _, tt := range tests {
		if got := LanguageForCountry(tt.country); got != tt.want {
			t.Errorf("LanguageForCountry(%q) = %q, want %q", tt.country, got, tt.want)
		}
	}
}
