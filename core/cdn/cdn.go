package cdn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"marketplace/core/apperr"
	"marketplace/core/storage"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrResourceNotFound is returned for unknown resource ids.
var ErrResourceNotFound = errors.New("resource not found")

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Service stores listing photos in the object store and tracks them in the database.
type Service struct {
	db     *gorm.DB
	client storage.Client
	http   *http.Client
	links  *lru.Cache
	opts   Options
	logger *zap.Logger
}

// NewService creates a new CDN resource service.
func NewService(db *gorm.DB, client storage.Client, httpClient *http.Client, opts Options, logger *zap.Logger) (*Service, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.LinkCacheSize <= 0 {
		opts.LinkCacheSize = defaultLinkCacheSize
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	links, err := lru.New(opts.LinkCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create link cache: %w", err)
	}

	return &Service{
		db:     db,
		client: client,
		http:   httpClient,
		links:  links,
		opts:   opts,
		logger: logger,
	}, nil
}

// WithDB returns a copy of the service bound to db, typically a transaction.
func (s *Service) WithDB(db *gorm.DB) *Service {
	cp := *s
	cp.db = db
	return &cp
}

// CreateExternalResource downloads the image at rawURL, uploads it and records it.
func (s *Service) CreateExternalResource(ctx context.Context, rawURL, tag string) (*Resource, error) {
	u, err := parseExternal(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "Invalid photo URL")
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "Photo URL could not be fetched")
	}
	defer resp.Body.Close()

	ext, contentType, err := checkImageResponse(resp)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u.Host, err)
	}
	if int64(len(data)) > s.opts.MaxBytes {
		return nil, apperr.Validation("Photo exceeds %d bytes", s.opts.MaxBytes)
	}

	id := uuid.NewString()
	res := &Resource{
		ResourceID:  id,
		ObjectName:  "external/" + id + ext,
		Filename:    filenameOf(u, ext),
		ContentType: contentType,
		ExternalURL: rawURL,
		Tag:         tag,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.client.PutObject(ctx, s.opts.Bucket, res.ObjectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", res.ObjectName, err)
	}

	if err := s.db.WithContext(ctx).Create(res).Error; err != nil {
		if rmErr := s.client.RemoveObject(ctx, s.opts.Bucket, res.ObjectName, minio.RemoveObjectOptions{}); rmErr != nil {
			s.logger.Warn("Failed to remove orphaned object", zap.String("object", res.ObjectName), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("failed to record resource: %w", err)
	}

	s.logger.Debug("Created external resource", zap.String("resource_id", id), zap.String("host", u.Host))
	return res, nil
}

// VerifyExternalResource checks that rawURL is reachable and serves an image.
func (s *Service) VerifyExternalResource(ctx context.Context, rawURL string) error {
	u, err := parseExternal(rawURL)
	if err != nil {
		return err
	}

	resp, err := s.probe(ctx, http.MethodHead, u)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, err = s.probe(ctx, http.MethodGet, u)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "Photo URL could not be fetched")
	}
	defer resp.Body.Close()

	_, _, err = checkImageResponse(resp)
	return err
}

func (s *Service) probe(ctx context.Context, method string, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return s.http.Do(req)
}

// GetFileLinkResource returns the public URL of a resource.
func (s *Service) GetFileLinkResource(ctx context.Context, resourceID string) (string, error) {
	if link, ok := s.links.Get(resourceID); ok {
		return link.(string), nil
	}

	res, err := s.get(ctx, resourceID)
	if err != nil {
		return "", err
	}

	link := s.opts.PublicURL + "/" + res.ObjectName
	s.links.Add(resourceID, link)
	return link, nil
}

// RemoveResource deletes the stored object and its record.
func (s *Service) RemoveResource(ctx context.Context, resourceID string) error {
	res, err := s.get(ctx, resourceID)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.opts.Bucket, res.ObjectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", res.ObjectName, err)
	}
	if err := s.db.WithContext(ctx).Delete(&Resource{}, "resource_id = ?", resourceID).Error; err != nil {
		return fmt.Errorf("failed to delete resource %s: %w", resourceID, err)
	}
	s.links.Remove(resourceID)
	return nil
}

// ResourceIDFromURL extracts the resource id from a URL served by this CDN.
// own is false for any URL outside the public base. An own URL whose object
// name carries no resource id returns own=true with an empty id.
func (s *Service) ResourceIDFromURL(rawURL string) (id string, own bool) {
	prefix := s.opts.PublicURL + "/"
	if s.opts.PublicURL == "" || !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	object := strings.TrimPrefix(rawURL, prefix)
	if i := strings.IndexAny(object, "?#"); i >= 0 {
		object = object[:i]
	}
	base := path.Base(object)
	id = strings.TrimSuffix(base, path.Ext(base))
	if _, err := uuid.Parse(id); err != nil {
		return "", true
	}
	return id, true
}

func (s *Service) get(ctx context.Context, resourceID string) (*Resource, error) {
	var res Resource
	err := s.db.WithContext(ctx).Where("resource_id = ?", resourceID).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load resource %s: %w", resourceID, err)
	}
	return &res, nil
}

func parseExternal(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, apperr.Validation("Invalid photo URL")
	}
	return u, nil
}

func checkImageResponse(resp *http.Response) (ext, contentType string, err error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", apperr.Validation("Photo URL returned status %d", resp.StatusCode)
	}
	contentType = strings.TrimSpace(strings.SplitN(resp.Header.Get("Content-Type"), ";", 2)[0])
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", "", apperr.Validation("Photo URL is not a supported image")
	}
	return ext, contentType, nil
}

func filenameOf(u *url.URL, ext string) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "image" + ext
	}
	return name
}
