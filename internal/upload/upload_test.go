package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/api/internal/block"
)

type storedObject struct {
	bucket      string
	name        string
	body        []byte
	contentType string
}

type fakeStore struct {
	objects []storedObject
	removed []string
	putErr  error
}

func (f *fakeStore) PutObject(_ context.Context, bucket, name string, body io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	f.objects = append(f.objects, storedObject{bucket: bucket, name: name, body: data, contentType: contentType})
	return nil
}

func (f *fakeStore) RemoveObject(_ context.Context, bucket, name string) error {
	f.removed = append(f.removed, bucket+"/"+name)
	return nil
}

func newTestUploader(store ObjectStore) *Uploader {
	return New(store, "https://cdn.example.com/", "media", 1, zerolog.Nop())
}

func TestUploadStoresObjectAndReturnsPublicURL(t *testing.T) {
	store := &fakeStore{}
	u := newTestUploader(store)

	res, err := u.Upload(context.Background(), File{
		Name:        "Cover Photo.PNG",
		ContentType: "image/png",
		Size:        5,
		Body:        strings.NewReader("hello"),
	}, Options{Folder: "/articles/"})
	require.NoError(t, err)

	require.Len(t, store.objects, 1)
	obj := store.objects[0]
	assert.Equal(t, "media", obj.bucket)
	assert.True(t, strings.HasPrefix(obj.name, "articles/obj_"))
	assert.True(t, strings.HasSuffix(obj.name, ".png"))
	assert.Equal(t, "hello", string(obj.body))
	assert.Equal(t, "https://cdn.example.com/media/"+obj.name, res.URL)
	assert.Equal(t, obj.name, res.Path)
	assert.Equal(t, int64(5), res.Size)
}

func TestUploadRejectsOversizedFileBeforeWriting(t *testing.T) {
	store := &fakeStore{}
	u := newTestUploader(store)

	_, err := u.Upload(context.Background(), File{
		Name: "big.bin",
		Size: 2 << 20,
		Body: bytes.NewReader(make([]byte, 2<<20)),
	}, Options{})
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "2.1 MB")
	assert.Empty(t, store.objects)
}

func TestUploadRejectsOversizedStreamOfUnknownSize(t *testing.T) {
	store := &fakeStore{}
	u := newTestUploader(store)

	_, err := u.Upload(context.Background(), File{
		Name: "big.bin",
		Size: -1,
		Body: bytes.NewReader(make([]byte, (1<<20)+1)),
	}, Options{})
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, store.objects)
}

func TestUploadOptionLimitOverridesDefault(t *testing.T) {
	store := &fakeStore{}
	u := newTestUploader(store)

	_, err := u.Upload(context.Background(), File{
		Name:        "clip.mp4",
		ContentType: "video/mp4",
		Size:        2 << 20,
		Body:        bytes.NewReader(make([]byte, 2<<20)),
	}, Options{Bucket: "video", MaxSizeMB: 5})
	require.NoError(t, err)
	require.Len(t, store.objects, 1)
	assert.Equal(t, "video", store.objects[0].bucket)
	assert.Equal(t, "video/mp4", store.objects[0].contentType)
}

func TestUploadEmptyFile(t *testing.T) {
	u := newTestUploader(&fakeStore{})
	_, err := u.Upload(context.Background(), File{Name: "a.txt", Size: -1, Body: strings.NewReader("")}, Options{})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = u.Upload(context.Background(), File{Name: "a.txt"}, Options{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestUploadStoreFailureIsReturned(t *testing.T) {
	u := newTestUploader(&fakeStore{putErr: errors.New("bucket offline")})
	_, err := u.Upload(context.Background(), File{Name: "a.png", Size: 1, Body: strings.NewReader("x")}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket offline")
}

func TestUploadSniffsMissingContentType(t *testing.T) {
	store := &fakeStore{}
	u := newTestUploader(store)
	_, err := u.Upload(context.Background(), File{
		Name: "noext",
		Size: -1,
		Body: strings.NewReader("%PDF-1.7\n..."),
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", store.objects[0].contentType)
}

func TestPathFromURL(t *testing.T) {
	cases := []struct {
		url    string
		bucket string
		want   string
		ok     bool
	}{
		{"https://cdn.example.com/media/articles/obj_1.png", "media", "articles/obj_1.png", true},
		{"https://cdn.example.com/storage/v1/object/public/media/a.png", "media", "a.png", true},
		{"https://cdn.example.com/other/a.png", "media", "", false},
		{"https://cdn.example.com/media/", "media", "", false},
		{"https://cdn.example.com/media/a.png", "", "", false},
		{"://bad", "media", "", false},
	}
	for _, tc := range cases {
		got, ok := PathFromURL(tc.url, tc.bucket)
		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.want, got, tc.url)
	}
}

func TestDeleteImageAndDeleteURL(t *testing.T) {
	store := &fakeStore{}
	u := newTestUploader(store)

	require.NoError(t, u.DeleteImage(context.Background(), "", "/articles/a.png"))
	require.NoError(t, u.DeleteURL(context.Background(), "https://cdn.example.com/media/b.png"))
	assert.Equal(t, []string{"media/articles/a.png", "media/b.png"}, store.removed)

	err := u.DeleteURL(context.Background(), "https://elsewhere.example.com/x.png")
	assert.ErrorIs(t, err, ErrForeignURL)
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts(block.TypeImage, "image/webp"))
	assert.True(t, Accepts(block.TypeVideo, "video/mp4"))
	assert.True(t, Accepts(block.TypeAudio, "audio/mpeg"))
	assert.True(t, Accepts(block.TypePDF, "application/pdf; charset=binary"))
	assert.True(t, Accepts(block.TypeFile, "application/zip"))
	assert.False(t, Accepts(block.TypeImage, "video/mp4"))
	assert.False(t, Accepts(block.TypeParagraph, "text/plain"))
}
