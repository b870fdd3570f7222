package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	BaseURL    string
	APIKey     string
	ClientType string
	HTTP       *http.Client
}

func New(baseURL, apiKey, clientType string) *Client {
	if baseURL == "" {
		baseURL = "https://api.audeasy.example.com"
	}
	return &Client{BaseURL: baseURL, APIKey: apiKey, ClientType: clientType, HTTP: http.DefaultClient}
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.ClientType != "" {
		req.Header.Set("X-Client-Type", c.ClientType)
	}
}

func (c *Client) postJSON(path string, body interface{}) (map[string]interface{}, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequest("POST", c.BaseURL+path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(path string, params map[string]string) (map[string]interface{}, error) {
	u, _ := url.Parse(c.BaseURL + path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	req, _ := http.NewRequest("GET", u.String(), nil)
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCAR submits a corrective action report from a free-form description
func (c *Client) CreateCAR(description, reportedBy string) (map[string]interface{}, error) {
	return c.postJSON("/v1/cars", map[string]string{
		"description": description,
		"reported_by": reportedBy,
	})
}

// AnalyzeCAR classifies a description without storing anything
func (c *Client) AnalyzeCAR(description string) (map[string]interface{}, error) {
	return c.postJSON("/v1/cars/analyze", map[string]string{"description": description})
}

// CARs lists reports with optional filters (category, severity, status, limit...)
func (c *Client) CARs(params map[string]string) (map[string]interface{}, error) {
	return c.getJSON("/v1/cars", params)
}

// LearnDefaults records submitted field values for future pre-fill
func (c *Client) LearnDefaults(userID, locationType string, fields map[string]string) (map[string]interface{}, error) {
	return c.postJSON("/v1/defaults/learn", map[string]interface{}{
		"user_id":       userID,
		"location_type": locationType,
		"fields":        fields,
	})
}

// Defaults fetches pre-fill values for an audit form
func (c *Client) Defaults(userID, locationType string) (map[string]interface{}, error) {
	return c.getJSON("/v1/defaults", map[string]string{
		"user_id":       userID,
		"location_type": locationType,
	})
}

// Suggestions fetches autocomplete candidates for a field prefix
func (c *Client) Suggestions(userID, field, prefix string) (map[string]interface{}, error) {
	return c.getJSON("/v1/defaults/suggestions", map[string]string{
		"user_id": userID,
		"field":   field,
		"prefix":  prefix,
	})
}

// QuickAudit runs the pre-shift critical check validation
func (c *Client) QuickAudit(responses map[string]string, reportedBy string) (map[string]interface{}, error) {
	return c.postJSON("/v1/audits/quick", map[string]interface{}{
		"responses":   responses,
		"reported_by": reportedBy,
	})
}

func (c *Client) CreateCheckoutSession(planCode string) (string, error) {
	body := fmt.Sprintf(`{"plan_code":"%s"}`, planCode)
	req, _ := http.NewRequest("POST", c.BaseURL+"/v1/billing/checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) CreatePortalSession() (string, error) {
	req, _ := http.NewRequest("POST", c.BaseURL+"/v1/billing/portal-session", nil)
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.URL, nil
}
