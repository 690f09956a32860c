package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"https-examples/internal/auth"
)

func testProfile() *auth.Profile {
	return &auth.Profile{
		ID:          "123",
		DisplayName: "Jane",
		Emails:      []auth.Email{{Value: "jane@x.com", Verified: true}},
		Photos:      []auth.Photo{{URL: "https://example.com/jane.png"}},
		Provider:    "google",
	}
}

// requestWithCookies builds a request carrying the cookies set on rec.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
