package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/oaswire/oaswire/internal/request"
	"github.com/oaswire/oaswire/internal/spec"
)

// Result records the outcome of one executed example.
type Result struct {
	Example Example
	// Request is the built descriptor; nil when the build itself failed.
	Request *request.Request
	// StatusCode is the observed response status; 0 when no response.
	StatusCode int
	// Err holds the build, dispatch, or expectation failure.
	Err error
}

// Runner executes example groups against a live server.
type Runner struct {
	client *http.Client
	logger hclog.Logger
}

// Options configures a Runner.
type Options struct {
	// Timeout bounds each dispatched request.
	Timeout time.Duration
	// Logger receives per-example progress; defaults to a named logger
	// at Info level.
	Logger hclog.Logger
}

// New constructs a Runner.
func New(opts Options) *Runner {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.New(&hclog.LoggerOptions{Name: "oaswire.runner"})
	}
	return &Runner{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Run builds and dispatches every example in the group. It always returns
// one Result per example; the returned error aggregates the failures.
func (r *Runner) Run(ctx context.Context, doc spec.Document, group *Group) ([]Result, error) {
	results := make([]Result, 0, len(group.Examples))
	var merr *multierror.Error

	for _, ex := range group.Examples {
		res := r.runExample(ctx, doc, group.BaseURL, ex)
		if res.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("example %q: %w", exampleLabel(ex), res.Err))
		}
		results = append(results, res)
	}
	return results, merr.ErrorOrNil()
}

func (r *Runner) runExample(ctx context.Context, doc spec.Document, baseURL string, ex Example) Result {
	res := Result{Example: ex}

	op, ok := spec.FindOperation(doc, ex.Operation)
	if !ok {
		res.Err = fmt.Errorf("operation %q not found in document", ex.Operation)
		return res
	}

	req, err := request.Build(doc, op, ex.Values, ex.Headers)
	if err != nil {
		res.Err = err
		return res
	}
	res.Request = req
	r.logger.Debug("built request", "operation", ex.Operation, "path", req.Path)

	httpReq, err := r.toHTTPRequest(ctx, baseURL, req)
	if err != nil {
		res.Err = err
		return res
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		res.Err = fmt.Errorf("dispatch %s %s: %w", req.Verb, req.Path, err)
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.StatusCode = resp.StatusCode
	r.logger.Info("executed example", "operation", ex.Operation, "status", resp.StatusCode)

	if ex.ExpectStatus != 0 && resp.StatusCode != ex.ExpectStatus {
		res.Err = fmt.Errorf("expected status %d, got %d", ex.ExpectStatus, resp.StatusCode)
	}
	return res
}

// toHTTPRequest converts the descriptor into an executable http.Request,
// performing the transport-level body encoding the descriptor leaves
// structural (form fields, multipart fields).
func (r *Runner) toHTTPRequest(ctx context.Context, baseURL string, req *request.Request) (*http.Request, error) {
	target := req.Path
	if !strings.Contains(target, "://") {
		target = strings.TrimRight(baseURL, "/") + req.Path
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Verb, target, body)
	if err != nil {
		return nil, fmt.Errorf("build http request: %w", err)
	}
	for name, value := range req.Headers {
		if name == "Host" {
			httpReq.Host = value
			continue
		}
		httpReq.Header.Set(name, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

// encodeBody returns the body reader and, when the encoding picked its own
// Content-Type (multipart boundaries), the header value to override with.
func encodeBody(req *request.Request) (io.Reader, string, error) {
	switch payload := req.Payload.(type) {
	case nil:
		return nil, "", nil
	case string:
		return strings.NewReader(payload), "", nil
	case []byte:
		return bytes.NewReader(payload), "", nil
	case map[string]any:
		if strings.HasPrefix(req.Headers["Content-Type"], "multipart/form-data") {
			return encodeMultipart(payload)
		}
		form := url.Values{}
		for name, value := range payload {
			form.Set(name, fmt.Sprintf("%v", value))
		}
		return strings.NewReader(form.Encode()), "", nil
	default:
		return strings.NewReader(fmt.Sprintf("%v", payload)), "", nil
	}
}

func encodeMultipart(fields map[string]any) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, fmt.Sprintf("%v", value)); err != nil {
			return nil, "", fmt.Errorf("write multipart field %q: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func exampleLabel(ex Example) string {
	if ex.Name != "" {
		return ex.Name
	}
	return ex.Operation
}
