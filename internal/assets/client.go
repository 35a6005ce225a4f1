// Package assets integrates with the remote asset host that stores uploaded
// attachments and media. Uploads return stable secure URLs that are persisted
// on entities; deletion works backwards from a stored URL to the remote
// object identifier.
package assets

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/atelierhaus/atelier-backend/internal/config"
)

// ErrNotFound is returned when a destroy targets an object the host no
// longer has. Callers treat it as success for cleanup purposes.
var ErrNotFound = errors.New("asset not found")

// uploadResponse is the host's upload result envelope.
type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// destroyResponse is the host's destroy result envelope.
type destroyResponse struct {
	Result string `json:"result"` // "ok" | "not found"
}

// Client uploads and deletes remote assets. Safe for concurrent use.
type Client struct {
	http       *resty.Client
	cloudName  string
	apiKey     string
	apiSecret  string
	baseFolder string
}

// NewClient builds an asset host client from configuration.
func NewClient(cfg config.AssetConfig) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBase, "/")+"/"+cfg.CloudName).
		SetTimeout(60*time.Second). // large attachments
		SetHeader("Accept", "application/json")
	return &Client{
		http:       c,
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		baseFolder: cfg.BaseFolder,
	}
}

// Upload stores data under folder (joined below the configured base folder)
// and returns the asset's secure URL. resourceType hints the host pipeline:
// "image", "raw" (documents), or "auto".
func (c *Client) Upload(ctx context.Context, data []byte, filename, folder, resourceType string) (string, error) {
	if resourceType == "" {
		resourceType = "auto"
	}
	fullFolder := c.baseFolder
	if folder != "" {
		fullFolder = c.baseFolder + "/" + folder
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"folder":    fullFolder,
		"timestamp": ts,
	}

	var out uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, strings.NewReader(string(data))).
		SetFormData(map[string]string{
			"api_key":   c.apiKey,
			"timestamp": ts,
			"folder":    fullFolder,
			"signature": c.sign(params),
		}).
		SetResult(&out).
		Post("/" + resourceType + "/upload")
	if err != nil {
		return "", fmt.Errorf("upload asset: %w", err)
	}
	if resp.IsError() || out.SecureURL == "" {
		return "", fmt.Errorf("upload asset: %s (%s)", out.Error.Message, resp.Status())
	}
	return out.SecureURL, nil
}

// Destroy removes the remote object behind assetURL. Returns ErrNotFound when
// the host reports the object missing.
func (c *Client) Destroy(ctx context.Context, assetURL string) error {
	publicID, resourceType, err := PublicIDFromURL(assetURL)
	if err != nil {
		return err
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": ts,
	}

	var out destroyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_key":   c.apiKey,
			"public_id": publicID,
			"timestamp": ts,
			"signature": c.sign(params),
		}).
		SetResult(&out).
		Post("/" + resourceType + "/destroy")
	if err != nil {
		return fmt.Errorf("destroy asset: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("destroy asset %s: %s", publicID, resp.Status())
	}
	if out.Result == "not found" {
		return ErrNotFound
	}
	if out.Result != "ok" {
		return fmt.Errorf("destroy asset %s: result %q", publicID, out.Result)
	}
	return nil
}

// sign computes the host's request signature: parameters sorted by key,
// joined as key=value with '&', concatenated with the API secret, SHA-1 hex.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(c.apiSecret)
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// PublicIDFromURL derives the remote object identifier and resource type from
// a delivery URL of the shape
//
//	https://res.example.com/<cloud>/<resourceType>/upload/v<version>/<folder>/<name>.<ext>
//
// The version segment is optional and the extension is stripped (the host
// keys raw uploads with, and images without, their extension; stripping is
// correct for the image/auto pipelines this application uses).
func PublicIDFromURL(assetURL string) (publicID, resourceType string, err error) {
	u, err := url.Parse(assetURL)
	if err != nil {
		return "", "", fmt.Errorf("parse asset url: %w", err)
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	uploadIdx := -1
	for i, s := range segs {
		if s == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx < 1 || uploadIdx == len(segs)-1 {
		return "", "", fmt.Errorf("unrecognized asset url %q", assetURL)
	}
	resourceType = segs[uploadIdx-1]

	rest := segs[uploadIdx+1:]
	// Skip the optional version segment ("v" + digits).
	if len(rest) > 1 && len(rest[0]) > 1 && rest[0][0] == 'v' && isDigits(rest[0][1:]) {
		rest = rest[1:]
	}
	id := strings.Join(rest, "/")
	if ext := path.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	if id == "" {
		return "", "", fmt.Errorf("unrecognized asset url %q", assetURL)
	}
	return id, resourceType, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
