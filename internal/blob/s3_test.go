package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects   map[string]string
	putErr    error
	deleteErr error
	lastType  string
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(body)
	f.lastType = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_PublicURLLocators(t *testing.T) {
	fake := &fakeObjects{objects: map[string]string{}}
	s := newS3Store(fake, "notes", "https://cdn.example.com/")
	ctx := context.Background()

	locator, err := s.Put(ctx, "1-a b.pdf", strings.NewReader("pdf"), 3, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/1-a%20b.pdf", locator)
	assert.Equal(t, "pdf", fake.objects["notes/1-a b.pdf"])
	assert.Equal(t, "application/pdf", fake.lastType)

	require.NoError(t, s.Delete(ctx, locator))
	assert.Empty(t, fake.objects)
}

func TestS3Store_BucketLocators(t *testing.T) {
	fake := &fakeObjects{objects: map[string]string{}}
	s := newS3Store(fake, "notes", "")
	ctx := context.Background()

	locator, err := s.Put(ctx, "2-b.pdf", strings.NewReader("pdf"), -1, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://notes/2-b.pdf", locator)

	require.NoError(t, s.Delete(ctx, locator))
	assert.Empty(t, fake.objects)
	assert.ErrorIs(t, s.Delete(ctx, "s3://other/2-b.pdf"), ErrInvalidLocator)
}

func TestS3Store_Errors(t *testing.T) {
	boom := errors.New("boom")
	fake := &fakeObjects{objects: map[string]string{}, putErr: boom, deleteErr: boom}
	s := newS3Store(fake, "notes", "")

	_, err := s.Put(context.Background(), "k", strings.NewReader("x"), 1, "application/pdf")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Delete(context.Background(), "s3://notes/k"), boom)
}
