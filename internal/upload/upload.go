// Package upload stores media files referenced by blocks and maps public
// URLs back to object paths.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"inkwell/api/internal/block"
	"inkwell/api/internal/util"
)

var (
	ErrTooLarge    = errors.New("file too large")
	ErrEmpty       = errors.New("file is empty")
	ErrContentType = errors.New("content type not accepted")
	ErrForeignURL  = errors.New("url does not belong to bucket")
)

const defaultMaxBytes = 10 << 20

// ObjectStore is the storage boundary the Uploader writes through.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, name string, body io.Reader, size int64, contentType string) error
	RemoveObject(ctx context.Context, bucket, name string) error
}

// File is an incoming upload. Size may be -1 when unknown.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Options selects where a file goes. Zero values fall back to the
// Uploader defaults.
type Options struct {
	Bucket    string
	Folder    string
	MaxSizeMB int
}

// Result describes a stored object.
type Result struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

type Uploader struct {
	store     ObjectStore
	publicURL string
	bucket    string
	maxBytes  int64
	log       zerolog.Logger
}

// New returns an Uploader writing to store. publicURL is the base under
// which objects are served, as <publicURL>/<bucket>/<path>.
func New(store ObjectStore, publicURL, bucket string, maxSizeMB int, log zerolog.Logger) *Uploader {
	limit := int64(defaultMaxBytes)
	if maxSizeMB > 0 {
		limit = int64(maxSizeMB) << 20
	}
	return &Uploader{
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		bucket:    bucket,
		maxBytes:  limit,
		log:       log.With().Str("component", "upload").Logger(),
	}
}

// Upload stores f and returns its public URL. Nothing is written when the
// file is empty or over the size limit.
func (u *Uploader) Upload(ctx context.Context, f File, opts Options) (Result, error) {
	bucket := opts.Bucket
	if bucket == "" {
		bucket = u.bucket
	}
	limit := u.maxBytes
	if opts.MaxSizeMB > 0 {
		limit = int64(opts.MaxSizeMB) << 20
	}

	body, size, err := bounded(f, limit)
	if err != nil {
		return Result{}, err
	}

	contentType := f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = sniff(f.Name, body)
	}

	name := objectName(opts.Folder, f.Name)
	if err := u.store.PutObject(ctx, bucket, name, body, size, contentType); err != nil {
		return Result{}, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	u.log.Info().Str("bucket", bucket).Str("path", name).Str("size", humanize.Bytes(uint64(size))).Msg("object stored")

	return Result{
		URL:         u.URL(bucket, name),
		Path:        name,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// URL returns the public address of name in bucket.
func (u *Uploader) URL(bucket, name string) string {
	return u.publicURL + "/" + bucket + "/" + name
}

// DeleteImage removes the object at objectPath from bucket.
func (u *Uploader) DeleteImage(ctx context.Context, bucket, objectPath string) error {
	if bucket == "" {
		bucket = u.bucket
	}
	objectPath = strings.TrimLeft(objectPath, "/")
	if objectPath == "" {
		return fmt.Errorf("delete image: %w", ErrForeignURL)
	}
	return u.store.RemoveObject(ctx, bucket, objectPath)
}

// DeleteURL removes the object a public URL points at.
func (u *Uploader) DeleteURL(ctx context.Context, rawURL string) error {
	p, ok := PathFromURL(rawURL, u.bucket)
	if !ok {
		return fmt.Errorf("delete %s: %w", rawURL, ErrForeignURL)
	}
	return u.DeleteImage(ctx, u.bucket, p)
}

// PathFromURL extracts the object path following the bucket segment of a
// public URL.
func PathFromURL(rawURL, bucket string) (string, bool) {
	if bucket == "" {
		return "", false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	marker := "/" + bucket + "/"
	_, rest, found := strings.Cut(parsed.Path, marker)
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}

// Accepts reports whether contentType may back a block of type t.
func Accepts(t block.Type, contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch t {
	case block.TypeImage, block.TypeGallery:
		return strings.HasPrefix(mediaType, "image/")
	case block.TypeVideo:
		return strings.HasPrefix(mediaType, "video/")
	case block.TypeAudio:
		return strings.HasPrefix(mediaType, "audio/")
	case block.TypePDF:
		return mediaType == "application/pdf"
	case block.TypeFile:
		return true
	default:
		return false
	}
}

func bounded(f File, limit int64) (io.Reader, int64, error) {
	if f.Body == nil || f.Size == 0 {
		return nil, 0, ErrEmpty
	}
	if f.Size > limit {
		return nil, 0, fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, humanize.Bytes(uint64(f.Size)), humanize.Bytes(uint64(limit)))
	}
	buf, err := io.ReadAll(io.LimitReader(f.Body, limit+1))
	if err != nil {
		return nil, 0, fmt.Errorf("read upload: %w", err)
	}
	switch n := int64(len(buf)); {
	case n == 0:
		return nil, 0, ErrEmpty
	case n > limit:
		return nil, 0, fmt.Errorf("%w: more than %s", ErrTooLarge, humanize.Bytes(uint64(limit)))
	}
	return bytes.NewReader(buf), int64(len(buf)), nil
}

func sniff(name string, body io.Reader) string {
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(name))); byExt != "" {
		return byExt
	}
	if r, ok := body.(*bytes.Reader); ok {
		head := make([]byte, 512)
		n, _ := r.ReadAt(head, 0)
		return http.DetectContentType(head[:n])
	}
	return "application/octet-stream"
}

func objectName(folder, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(fileName, "\\", "/"))))
	name := util.NewID("obj") + ext
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
