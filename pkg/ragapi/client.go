package ragapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// Backend is the remote RAG API surface the dashboard consumes. One
// method per endpoint; implemented by *Client, faked in service tests.
type Backend interface {
	ListDocuments(ctx context.Context, filters FilterCriteria) ([]string, error)
	DeleteDocument(ctx context.Context, filename string) error
	IngestFile(ctx context.Context, req IngestFileRequest) error
	IngestURL(ctx context.Context, req IngestURLRequest) error
	Search(ctx context.Context, question string, k int, filters FilterCriteria) ([]SearchResult, error)
	Metadata(ctx context.Context) (*MetadataOptions, error)
	Answer(ctx context.Context, req AnswerRequest) (string, error)
	Transcribe(ctx context.Context, clip []byte) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Client talks to the RAG backend over HTTP. All calls share one
// circuit breaker so a dead backend fails fast instead of piling up
// blocked panes.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ Backend = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "RAGBackend",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
	}
}

// do runs one request through the breaker and returns the raw body of a
// 2xx response. Non-2xx replies become *APIError with the backend's
// detail message.
func (c *Client) do(req *http.Request) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("backend request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, decodeError(resp.StatusCode, resp.Body)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read backend response: %w", err)
		}
		return body, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("backend unavailable: %w", err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func filterQuery(filters FilterCriteria) url.Values {
	query := url.Values{}
	if filters.Country != "" {
		query.Set("country", filters.Country)
	}
	if filters.JobArea != "" {
		query.Set("job_area", filters.JobArea)
	}
	if filters.SourceType != "" {
		query.Set("source_type", filters.SourceType)
	}
	return query
}

// ListDocuments fetches the stored-document listing, optionally
// narrowed by metadata filters. Order is the backend's own.
func (c *Client) ListDocuments(ctx context.Context, filters FilterCriteria) ([]string, error) {
	body, err := c.get(ctx, "/documents", filterQuery(filters))
	if err != nil {
		return nil, err
	}
	var filenames []string
	if err := json.Unmarshal(body, &filenames); err != nil {
		return nil, fmt.Errorf("unmarshal document listing: %w", err)
	}
	return filenames, nil
}

// DeleteDocument removes one document and its derived chunks.
func (c *Client) DeleteDocument(ctx context.Context, filename string) error {
	query := url.Values{}
	query.Set("filename", filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/documents?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	_, err = c.do(req)
	return err
}

// IngestFile uploads one document as multipart form data together with
// its metadata fields.
func (c *Client) IngestFile(ctx context.Context, ingest IngestFileRequest) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("file", ingest.Filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := fileWriter.Write(ingest.Data); err != nil {
		return fmt.Errorf("write file data: %w", err)
	}

	writer.WriteField("country", ingest.Country)
	writer.WriteField("job_area", ingest.JobArea)
	writer.WriteField("source_type", ingest.SourceType)
	writer.WriteField("target_group", ingest.TargetGroup)
	writer.WriteField("owner", ingest.Owner)

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest_pdf", &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = c.do(req)
	return err
}

// IngestURL submits a web page for ingestion. The backend expects
// everything as query parameters on the POST.
func (c *Client) IngestURL(ctx context.Context, ingest IngestURLRequest) error {
	query := url.Values{}
	query.Set("url", ingest.URL)
	query.Set("country", ingest.Country)
	query.Set("job_area", ingest.JobArea)
	query.Set("source_type", ingest.SourceType)
	query.Set("target_group", ingest.TargetGroup)
	query.Set("owner", ingest.Owner)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/ingest_url?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	_, err = c.do(req)
	return err
}

// Search runs ranked semantic search over the stored corpus.
func (c *Client) Search(ctx context.Context, question string, k int, filters FilterCriteria) ([]SearchResult, error) {
	query := filterQuery(filters)
	query.Set("q", question)
	query.Set("k", strconv.Itoa(k))

	body, err := c.get(ctx, "/search/", query)
	if err != nil {
		return nil, err
	}
	var results []SearchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("unmarshal search results: %w", err)
	}
	return results, nil
}

// Metadata enumerates the valid filter values.
func (c *Client) Metadata(ctx context.Context) (*MetadataOptions, error) {
	body, err := c.get(ctx, "/metadata", nil)
	if err != nil {
		return nil, err
	}
	var options MetadataOptions
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, fmt.Errorf("unmarshal metadata options: %w", err)
	}
	return &options, nil
}

// Answer sends the running transcript plus the new question and returns
// the generated answer text.
func (c *Client) Answer(ctx context.Context, answer AnswerRequest) (string, error) {
	payload, err := json.Marshal(answer)
	if err != nil {
		return "", fmt.Errorf("marshal answer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/answer", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	var parsed answerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal answer: %w", err)
	}
	return parsed.Answer, nil
}

// Transcribe converts one captured audio clip to text.
func (c *Client) Transcribe(ctx context.Context, clip []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("audio", "capture.webm")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fileWriter.Write(clip); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/transcribe", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	var parsed transcribeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal transcript: %w", err)
	}
	return parsed.Transcript, nil
}

// Synthesize fetches spoken audio for one assistant message. Returns
// the raw audio bytes as produced by the backend.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	form := url.Values{}
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/tts", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}
