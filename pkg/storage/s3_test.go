package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(in.Prefix)
	out := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := NewS3StorageWithClient(fake, "bucket", "/todotxt/")

	_, err := s.Read(ctx, "todo.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Write(ctx, "todo.txt", []byte("(B) water plants\n")))
	require.NoError(t, s.Write(ctx, "work.txt", []byte("ship it\n")))
	require.NoError(t, s.Write(ctx, "archive/old.txt", []byte("x old\n")))
	assert.Contains(t, fake.objects, "todotxt/todo.txt")

	data, err := s.Read(ctx, "todo.txt")
	require.NoError(t, err)
	assert.Equal(t, "(B) water plants\n", string(data))

	ok, err := s.Exists(ctx, "work.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	paths, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"todo.txt", "work.txt"}, paths)

	paths, err = s.List(ctx, "archive")
	require.NoError(t, err)
	assert.Equal(t, []string{"archive/old.txt"}, paths)

	require.NoError(t, s.Delete(ctx, "work.txt"))
	ok, err = s.Exists(ctx, "work.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}
