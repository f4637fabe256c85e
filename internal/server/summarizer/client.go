package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// Client is the HTTP client for the external summarization capability. It
// uploads the images as an ordered multipart body and expects a JSON
// {"summary": "..."} response.
//
// The client applies no timeout or retry of its own; resilience policy lives
// in Gateway.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

func (c *Client) Summarize(ctx context.Context, images []Image) (string, error) {

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Part order is the page order; the capability must respect it.
	for i, img := range images {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="page-%d"`, i))
		header.Set("Content-Type", img.ContentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return "", fmt.Errorf("%w: create multipart part: %v", ErrPermanent, err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return "", fmt.Errorf("%w: write image data: %v", ErrPermanent, err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: close multipart writer: %v", ErrPermanent, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrPermanent, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", c.classifyStatus(resp)
	}

	var payload struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrPermanent, err)
	}

	summary := strings.TrimSpace(payload.Summary)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary returned", ErrPermanent)
	}

	return summary, nil
}

// classifyStatus maps HTTP failures onto the gateway error taxonomy:
// rate limiting and 5xx are transient, everything else in the 4xx range is
// permanent. A 429 whose body mentions quota is exhausted quota, not rate
// limiting; retrying cannot fix it.
func (c *Client) classifyStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(body))

	if resp.StatusCode == http.StatusTooManyRequests {
		if strings.Contains(strings.ToLower(detail), "quota") {
			return fmt.Errorf("%w: status %d: %s", ErrPermanent, resp.StatusCode, detail)
		}
		return fmt.Errorf("%w: status %d: %s", ErrTransient, resp.StatusCode, detail)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d: %s", ErrTransient, resp.StatusCode, detail)
	}
	return fmt.Errorf("%w: status %d: %s", ErrPermanent, resp.StatusCode, detail)
}
