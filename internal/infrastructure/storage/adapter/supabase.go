package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/storage/port"
)

// Bucket holding product images.
const productImagesBucket = "product-images"

// SupabaseStore talks to the hosted storage HTTP API: POST an object, get a
// public URL under /object/public/, DELETE by bucket-relative path.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

// NewSupabaseStoreFromEnv reads SUPABASE_URL and SUPABASE_SERVICE_KEY.
func NewSupabaseStoreFromEnv() (*SupabaseStore, error) {
	baseURL := strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	key := os.Getenv("SUPABASE_SERVICE_KEY")
	if baseURL == "" || key == "" {
		return nil, errors.New("storage: SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}
	return &SupabaseStore{
		baseURL:    baseURL,
		serviceKey: key,
		bucket:     productImagesBucket,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

var _ port.ObjectStore = (*SupabaseStore)(nil)

func (s *SupabaseStore) Upload(ctx context.Context, userID string, filename string, contentType string, data []byte) (string, error) {
	objectPath := ObjectName(userID, filename)

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("storage: build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage: upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath), nil
}

func (s *SupabaseStore) Delete(ctx context.Context, url string) error {
	// The public URL embeds the bucket-relative path after "/<bucket>/".
	marker := "/" + s.bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return nil
	}
	objectPath := url[idx+len(marker):]

	payload, err := json.Marshal(map[string][]string{"prefixes": {objectPath}})
	if err != nil {
		return fmt.Errorf("storage: encode delete request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", s.baseURL, s.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("storage: build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage: delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("storage: delete failed with status %d", resp.StatusCode)
	}
	return nil
}

// ObjectName builds the per-user object path: <userID>/<unix>-<rand>.<ext>.
func ObjectName(userID string, filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%d-%06d.%s", userID, time.Now().Unix(), rand.Intn(1_000_000), ext)
}
