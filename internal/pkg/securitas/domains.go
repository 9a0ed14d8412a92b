package securitas

import "strings"

// The vendor runs one GraphQL endpoint per country, some branded
// securitasdirect and some verisure.  Countries without an explicit
// entry get the templated default.
const defaultURLTemplate = "https://customers.securitasdirect.{country}/owa-api/graphql"

var countryURLs = map[string]string{
	"AR": "https://customers.verisure.com.ar/owa-api/graphql",
	"BR": "https://customers.verisure.com.br/owa-api/graphql",
	"CL": "https://customers.verisure.cl/owa-api/graphql",
	"ES": "https://customers.securitasdirect.es/owa-api/graphql",
	"FR": "https://customers.securitasdirect.fr/owa-api/graphql",
	"GB": "https://customers.verisure.co.uk/owa-api/graphql",
	"IE": "https://customers.verisure.ie/owa-api/graphql",
	"IT": "https://customers.verisure.it/owa-api/graphql",
	"PT": "https://customers.securitasdirect.pt/owa-api/graphql",
}

var countryLanguages = map[string]string{
	"AR": "ar",
	"BR": "br",
	"CL": "es",
	"ES": "es",
	"FR": "fr",
	"GB": "en",
	"IE": "en",
	"IT": "it",
	"PT": "pt",
}

const defaultLanguage = "en"

// URLForCountry returns the API endpoint for a country code, falling
// back to the templated default for countries not explicitly listed.
func URLForCountry(country string) string {
	country = strings.ToUpper(country)
	if url, ok := countryURLs[country]; ok {
		return url
	}

	return strings.ReplaceAll(defaultURLTemplate, "{country}", country)
}

// LanguageForCountry returns the request language for a country code,
// defaulting to English.
func LanguageForCountry(country string) string {
	country = strings.ToUpper(country)
	if lang, ok := countryLanguages[country]; ok {
		return lang
	}

	return defaultLanguage
}
