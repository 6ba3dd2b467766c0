package main

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// MockRoundTripper is a mock implementation of http.RoundTripper.
type MockRoundTripper struct {
	Handler func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Handler(req)
}

func textResponse(status int, header http.Header, body string) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestLogin(t *testing.T) {
	var seen url.Values
	client := &Client{Transport: &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodPost, req.Method)
			require.Contains(t, req.URL.Path, "/auth/UI/Login")

			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			seen, err = url.ParseQuery(string(body))
			require.NoError(t, err)

			header := make(http.Header)
			header.Set("Location", "/accueil")
			header.Set("Set-Cookie", sessionCookieName+"=tok-123; Path=/")
			return textResponse(http.StatusFound, header, ""), nil
		},
	}}

	token, err := client.Login("user@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, Token("tok-123"), token)
	require.Equal(t, "user@example.com", seen.Get("IDToken1"))
	require.Equal(t, "hunter2", seen.Get("IDToken2"))
}

func TestLoginRejected(t *testing.T) {
	client := &Client{Transport: &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			// Rejected credentials come back as the login page again,
			// without the session cookie.
			return textResponse(http.StatusOK, nil, "<html>login</html>"), nil
		},
	}}

	_, err := client.Login("user@example.com", "wrong")
	require.True(t, errors.Is(err, ErrLoginFailed), "got %v", err)
}

func TestGetDataPerDay(t *testing.T) {
	client := &Client{Transport: &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			require.Equal(t, resourceDays, req.URL.Query().Get("p_p_resource_id"))
			require.Equal(t, "2", req.URL.Query().Get("p_p_lifecycle"))

			cookie, err := req.Cookie(sessionCookieName)
			require.NoError(t, err)
			require.Equal(t, "tok-123", cookie.Value)

			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			form, err := url.ParseQuery(string(body))
			require.NoError(t, err)
			require.Equal(t, "01/02/2024", form.Get("_"+portletID+"_dateDebut"))
			require.Equal(t, "01/03/2024", form.Get("_"+portletID+"_dateFin"))

			return textResponse(http.StatusOK, nil, `{
				"etat": {"valeur": "termine"},
				"graphe": {
					"decalage": 2,
					"periode": {"dateDebut": "01/02/2024", "dateFin": "01/03/2024"},
					"data": [{"ordre": 0, "valeur": -1}, {"ordre": 1, "valeur": 12.5}]
				}
			}`), nil
		},
	}}

	res, err := client.GetDataPerDay(Token("tok-123"),
		time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 2, res.Graphe.Decalage)
	require.Equal(t, "01/02/2024", res.Graphe.Periode.DateDebut)
	require.Len(t, res.Graphe.Data, 2)
	require.Equal(t, 12.5, *res.Graphe.Data[1].Valeur)
}

func TestGetDataServiceError(t *testing.T) {
	client := &Client{Transport: &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			return textResponse(http.StatusOK, nil, `{"etat": {"valeur": "erreur"}}`), nil
		},
	}}

	_, err := client.GetDataPerMonth(Token("tok"), time.Now(), time.Now())
	require.Error(t, err)
}

func TestGetDataBadStatus(t *testing.T) {
	client := &Client{Transport: &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			return textResponse(http.StatusInternalServerError, nil, ""), nil
		},
	}}

	_, err := client.GetDataPerDay(Token("tok"), time.Now(), time.Now())
	require.Error(t, err)
}
