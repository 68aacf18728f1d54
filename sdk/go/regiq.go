package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	BaseURL     string
	APIKey      string
	AdminSecret string
	HTTP        *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.regiq.example.com"
	}
	return &Client{BaseURL: baseURL, APIKey: apiKey, HTTP: http.DefaultClient}
}

func (c *Client) headers(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}

func (c *Client) Alerts(params map[string]string) (*http.Response, error) {
	u, _ := url.Parse(c.BaseURL + "/v1/alerts")
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	req, _ := http.NewRequest("GET", u.String(), nil)
	c.headers(req)
	return c.HTTP.Do(req)
}

func (c *Client) Alert(id string) (map[string]interface{}, error) {
	req, _ := http.NewRequest("GET", c.BaseURL+"/v1/alerts/"+url.PathEscape(id), nil)
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alert %s: status %d", id, resp.StatusCode)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Freshness returns the per-source data freshness rows.
func (c *Client) Freshness() ([]map[string]interface{}, error) {
	return c.list("/v1/freshness")
}

// Indicators returns the system-wide gap indicators, highest risk first.
func (c *Client) Indicators() ([]map[string]interface{}, error) {
	return c.list("/v1/gaps/indicators")
}

// list fetches an endpoint that wraps its rows in a {data, count} envelope.
func (c *Client) list(path string) ([]map[string]interface{}, error) {
	req, _ := http.NewRequest("GET", c.BaseURL+path, nil)
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	var out struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AnalyzeGaps runs the gap detector over the given alert IDs, or over the
// recent backlog when analyzeAll is set.
func (c *Client) AnalyzeGaps(alertIDs []string, analyzeAll bool) (map[string]interface{}, error) {
	ids := make([]string, len(alertIDs))
	for i, id := range alertIDs {
		ids[i] = fmt.Sprintf("%q", id)
	}
	body := fmt.Sprintf(`{"alert_ids":[%s],"analyze_all":%t}`, strings.Join(ids, ","), analyzeAll)
	req, _ := http.NewRequest("POST", c.BaseURL+"/v1/gaps/analyze", strings.NewReader(body))
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

// TriggerSync calls the admin sync endpoint. Action is one of "sync_all",
// "sync", or "test"; agency is required for the latter two.
func (c *Client) TriggerSync(action, agency string) (map[string]interface{}, error) {
	if c.AdminSecret == "" {
		return nil, fmt.Errorf("admin secret required for sync")
	}
	body := fmt.Sprintf(`{"action":"%s","agency":"%s"}`, action, agency)
	req, _ := http.NewRequest("POST", c.BaseURL+"/v1/admin/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Secret", c.AdminSecret)
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sync: status %d", resp.StatusCode)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
