package s3infra

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct{ mock.Mock }

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*s3.PutObjectOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*s3.GetObjectOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPut(t *testing.T) {
	client := &mockS3{}
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "creds" && *in.Key == "credentials/abc.json" && *in.ContentType == "application/json" && *in.ContentLength == 2
	})).Return(&s3.PutObjectOutput{}, nil)

	s := &Store{client: client, bucket: "creds"}
	url, err := s.Put(context.Background(), "credentials/abc.json", []byte("{}"), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "s3://creds/credentials/abc.json", url)
	client.AssertExpectations(t)
}

func TestGet(t *testing.T) {
	client := &mockS3{}
	client.On("GetObject", mock.Anything, mock.Anything).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(`{"a":1}`))}, nil)

	s := &Store{client: client, bucket: "creds"}
	data, err := s.Get(context.Background(), "credentials/abc.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))
}

func TestGet_NoSuchKeyIsNotFound(t *testing.T) {
	client := &mockS3{}
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	s := &Store{client: client, bucket: "creds"}
	_, err := s.Get(context.Background(), "credentials/missing.json")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGet_OtherErrors(t *testing.T) {
	client := &mockS3{}
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	s := &Store{client: client, bucket: "creds"}
	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
