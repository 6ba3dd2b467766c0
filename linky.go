package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultLoginURL is used by Client when Client.LoginURL is blank.
	DefaultLoginURL = "https://espace-client-connexion.enedis.fr/auth/UI/Login"
	// DefaultBaseURL is used by Client when Client.BaseURL is blank. It's
	// expected to serve POST {base}/suivi-de-consommation portlet requests.
	DefaultBaseURL = "https://espace-client-particuliers.enedis.fr/group/espace-particuliers"

	dataPath  = "/suivi-de-consommation"
	portletID = "lincspartdisplaycdc_WAR_lincspartcdcportlet"

	sessionCookieName = "iPlanetDirectoryPro"
)

// Report resource identifiers, one per granularity the portlet can serve.
const (
	resourceHours  = "urlCdcHeure"
	resourceDays   = "urlCdcJour"
	resourceMonths = "urlCdcMois"
	resourceYears  = "urlCdcAn"
)

// ErrLoginFailed is returned by Login when the service rejects the
// credentials. It is the one error the driver singles out at the top level.
var ErrLoginFailed = errors.New("enedis login failed")

// Token is the session cookie value obtained from Login and required by
// every data request.
type Token string

// Client is an Enedis customer-space API client.
//
// There is no documented API; request interactions were gleaned from the
// web frontend's network activity.
type Client struct {
	// Transport is the http.RoundTripper to use for requests.
	// If nil, http.DefaultTransport is used.
	Transport http.RoundTripper

	// LoginURL overrides DefaultLoginURL when non-blank.
	LoginURL string

	// BaseURL overrides DefaultBaseURL when non-blank.
	BaseURL string
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	tr := c.Transport
	if tr == nil {
		tr = http.DefaultTransport
	}
	// A successful login answers with a redirect carrying the session
	// cookie; following it would lose the Set-Cookie header.
	cl := &http.Client{
		Transport: tr,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return cl.Do(req)
}

func (c *Client) loginURL() string {
	if c.LoginURL != "" {
		return c.LoginURL
	}
	return DefaultLoginURL
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// Login authenticates with the customer-space SSO and returns the session
// token. A response without the session cookie means the credentials were
// rejected and yields ErrLoginFailed.
func (c *Client) Login(username, password string) (Token, error) {
	form := url.Values{
		"IDToken1":             {username},
		"IDToken2":             {password},
		"SunQueryParamsString": {base64.StdEncoding.EncodeToString([]byte("realm=particuliers"))},
		"encoded":              {"true"},
		"gx_charset":           {"UTF-8"},
	}

	req, err := http.NewRequest(http.MethodPost, c.loginURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("posting login form: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName && ck.Value != "" {
			return Token(ck.Value), nil
		}
	}
	return "", ErrLoginFailed
}

// GetDataPerHour returns half-hourly readings between start and end.
func (c *Client) GetDataPerHour(token Token, start, end time.Time) (*ConsumptionResponse, error) {
	return c.getData(token, resourceHours, start, end)
}

// GetDataPerDay returns daily readings between start and end.
func (c *Client) GetDataPerDay(token Token, start, end time.Time) (*ConsumptionResponse, error) {
	return c.getData(token, resourceDays, start, end)
}

// GetDataPerMonth returns monthly readings between start and end.
func (c *Client) GetDataPerMonth(token Token, start, end time.Time) (*ConsumptionResponse, error) {
	return c.getData(token, resourceMonths, start, end)
}

// GetDataPerYear returns yearly readings between start and end.
func (c *Client) GetDataPerYear(token Token, start, end time.Time) (*ConsumptionResponse, error) {
	return c.getData(token, resourceYears, start, end)
}

func (c *Client) getData(token Token, resource string, start, end time.Time) (*ConsumptionResponse, error) {
	u, err := url.Parse(c.baseURL() + dataPath)
	if err != nil {
		return nil, fmt.Errorf("bad base URL %q: %w", c.baseURL(), err)
	}
	q := make(url.Values)
	q.Set("p_p_id", portletID)
	q.Set("p_p_lifecycle", "2")
	q.Set("p_p_resource_id", resource)
	q.Set("p_p_cacheability", "cacheLevelPage")
	u.RawQuery = q.Encode()

	form := url.Values{
		"_" + portletID + "_dateDebut": {start.Format(wireDateLayout)},
		"_" + portletID + "_dateFin":   {end.Format(wireDateLayout)},
	}

	req, err := http.NewRequest(http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", resource, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: string(token)})

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s data: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status for %s data: %d", resource, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", resource, err)
	}

	var out ConsumptionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", resource, err)
	}
	if out.Etat.Valeur == "erreur" {
		return nil, fmt.Errorf("service reported an error for %s data", resource)
	}
	return &out, nil
}
