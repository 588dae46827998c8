package utils

import (
	"net/http"
	"net/url"
)

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates HTTP headers with defaults.
func BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Add("User-Agent", "bibnorm/1.0")
	headers.Add("Accept", "application/x-bibtex, text/plain;q=0.9, */*;q=0.5")

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}
