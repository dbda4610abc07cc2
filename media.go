package ramik

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// File is a local image to upload.
type File struct {
	Name    string
	Content io.Reader
}

// Media performs signed uploads to the image-hosting service.
type Media struct {
	cfg  MediaConfig
	http *http.Client
	now  func() time.Time
	log  *slog.Logger
}

func newMedia(cfg MediaConfig, client *http.Client, now func() time.Time, log *slog.Logger) *Media {
	return &Media{cfg: cfg, http: client, now: now, log: log}
}

// Configured reports whether cloud name, API key and secret are all set.
func (m *Media) Configured() bool {
	return m.cfg.configured()
}

// Sign returns the hex SHA-1 of the params as sorted "k=v" pairs joined by
// "&", followed by the secret.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// Upload sends one file and returns its hosted URL and public id.
// Any failure is an *UploadError naming the file.
func (m *Media) Upload(ctx context.Context, f File) (Image, error) {
	if !m.Configured() {
		return Image{}, &UploadError{File: f.Name, Err: ErrMediaNotConfigured}
	}
	if f.Content == nil {
		return Image{}, &UploadError{File: f.Name, Err: fmt.Errorf("%w: no content", ErrInvalidInput)}
	}

	timestamp := strconv.FormatInt(m.now().Unix(), 10)
	signature := Sign(map[string]string{
		"folder":    m.cfg.Folder,
		"timestamp": timestamp,
	}, m.cfg.APISecret)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return Image{}, &UploadError{File: f.Name, Err: err}
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return Image{}, &UploadError{File: f.Name, Err: fmt.Errorf("read file: %w", err)}
	}
	fields := [][2]string{
		{"api_key", m.cfg.APIKey},
		{"timestamp", timestamp},
		{"signature", signature},
		{"folder", m.cfg.Folder},
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return Image{}, &UploadError{File: f.Name, Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return Image{}, &UploadError{File: f.Name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint("upload"), &buf)
	if err != nil {
		return Image{}, &UploadError{File: f.Name, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	status, body, err := m.send(req)
	if err != nil {
		return Image{}, &UploadError{File: f.Name, Err: err}
	}
	if status < 200 || status > 299 {
		msg := serverMessage(body, "")
		if msg == "" {
			msg = "failed to upload image"
		}
		return Image{}, &UploadError{File: f.Name, Status: status, Message: msg}
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.SecureURL == "" || resp.PublicID == "" {
		return Image{}, &UploadError{File: f.Name, Status: status, Err: ErrMalformedResponse}
	}

	m.log.DebugContext(ctx, "image uploaded", "file", f.Name, "public_id", resp.PublicID)
	return Image{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// UploadAll uploads the files concurrently and waits for all of them.
// The result has one slot per file; slots of failed files are zero. A failed
// file does not cancel its siblings; the returned error joins every
// per-file *UploadError.
func (m *Media) UploadAll(ctx context.Context, files []File) ([]Image, error) {
	images := make([]Image, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	for i, f := range files {
		g.Go(func() error {
			images[i], errs[i] = m.Upload(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	return images, errors.Join(errs...)
}

// Destroy deletes a hosted image by public id.
func (m *Media) Destroy(ctx context.Context, publicID string) error {
	if !m.Configured() {
		return ErrMediaNotConfigured
	}

	timestamp := strconv.FormatInt(m.now().Unix(), 10)
	form := url.Values{
		"public_id": {publicID},
		"api_key":   {m.cfg.APIKey},
		"timestamp": {timestamp},
		"signature": {Sign(map[string]string{
			"public_id": publicID,
			"timestamp": timestamp,
		}, m.cfg.APISecret)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint("destroy"), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("ramik: destroy %q: %w", publicID, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := m.send(req)
	if err != nil {
		return fmt.Errorf("ramik: destroy %q: %w", publicID, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("ramik: destroy %q: status %d: %s", publicID, status, serverMessage(body, strings.TrimSpace(string(body))))
	}
	return nil
}

func (m *Media) endpoint(action string) string {
	return strings.TrimRight(m.cfg.Endpoint, "/") + "/" + url.PathEscape(m.cfg.CloudName) + "/image/" + action
}

func (m *Media) send(req *http.Request) (int, []byte, error) {
	resp, err := m.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}
