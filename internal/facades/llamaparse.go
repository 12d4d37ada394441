package facades

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sbilibin2017/filekit/internal/logger"
)

const (
	llamaDefaultBaseURL = "https://api.cloud.llamaindex.ai"
	llamaLanguage       = "en"
	llamaResultType     = "markdown"
)

// Parse job states reported by LlamaParse.
const (
	llamaStatusSuccess  = "SUCCESS"
	llamaStatusError    = "ERROR"
	llamaStatusCanceled = "CANCELED"
)

var (
	ErrParseJobFailed  = errors.New("parse job failed")
	ErrParseJobTimeout = errors.New("parse job did not finish in time")
)

// LlamaParseFacade turns documents into markdown through the LlamaParse REST API:
// upload the file, poll the job, then fetch the markdown result.
type LlamaParseFacade struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxPolls     int
}

// NewLlamaParseFacade creates a facade. An empty baseURL selects the public cloud endpoint.
func NewLlamaParseFacade(apiKey, baseURL string, timeout, pollInterval time.Duration, maxPolls int) *LlamaParseFacade {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = llamaDefaultBaseURL
	}
	return &LlamaParseFacade{
		apiKey:       apiKey,
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

type llamaJob struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type llamaMarkdownResult struct {
	Markdown string `json:"markdown"`
}

// Parse uploads the file at path with the given parsing instruction and
// returns the markdown produced for it.
func (f *LlamaParseFacade) Parse(ctx context.Context, path, instruction string) (string, error) {
	if f.apiKey == "" {
		return "", errors.New("LLAMA_API_KEY not set")
	}

	job, err := f.upload(ctx, path, instruction)
	if err != nil {
		logger.Log.Errorw("failed to upload document to parser", "path", path, "error", err)
		return "", err
	}
	logger.Log.Infow("parse job created", "job_id", job.ID, "path", path)

	if err := f.wait(ctx, job.ID); err != nil {
		logger.Log.Errorw("parse job did not succeed", "job_id", job.ID, "error", err)
		return "", err
	}

	var result llamaMarkdownResult
	if err := f.getJSON(ctx, "/api/parsing/job/"+job.ID+"/result/"+llamaResultType, &result); err != nil {
		logger.Log.Errorw("failed to fetch parse result", "job_id", job.ID, "error", err)
		return "", err
	}
	return result.Markdown, nil
}

func (f *LlamaParseFacade) upload(ctx context.Context, path, instruction string) (*llamaJob, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	fields := map[string]string{
		"language":            llamaLanguage,
		"parsing_instruction": instruction,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/api/parsing/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var job llamaJob
	if err := f.do(req, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, errors.New("parser returned no job id")
	}
	return &job, nil
}

// wait polls the job until it succeeds, fails, or maxPolls is reached.
func (f *LlamaParseFacade) wait(ctx context.Context, jobID string) error {
	for attempt := 0; attempt < f.maxPolls; attempt++ {
		var job llamaJob
		if err := f.getJSON(ctx, "/api/parsing/job/"+jobID, &job); err != nil {
			return err
		}

		switch job.Status {
		case llamaStatusSuccess:
			return nil
		case llamaStatusError, llamaStatusCanceled:
			return fmt.Errorf("%w: %s %s", ErrParseJobFailed, job.Status, job.ErrorMessage)
		}

		select {
		case <-time.After(f.pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ErrParseJobTimeout
}

func (f *LlamaParseFacade) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return err
	}
	return f.do(req, out)
}

func (f *LlamaParseFacade) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+f.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("parser request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read parser response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("parser api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode parser response: %w", err)
	}
	return nil
}
