package s3bucket

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/serdex"
)

type mockClient struct {
	mock.Mock
	uploaded bytes.Buffer
}

func (m *mockClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*s3.GetObjectOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*s3.PutObjectOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func quietLogger() *serdex.StructuredLogger {
	return serdex.NewStructuredLogger(serdex.LoggerConfig{Level: serdex.LogLevelError, Output: io.Discard})
}

func matchInput(bucket, key string) any {
	return mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == bucket && aws.ToString(in.Key) == key
	})
}

func TestStore_Open(t *testing.T) {
	client := &mockClient{}
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "docs" && aws.ToString(in.Key) == "a.json"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(`{"id":1}`))}, nil)
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, errors.New("NoSuchKey"))

	store := New(client, quietLogger())

	body, err := store.Open(context.Background(), "docs", "a.json")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, `{"id":1}`, string(data))

	_, err = store.Open(context.Background(), "docs", "missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://docs/missing.json")
	client.AssertExpectations(t)
}

func TestStore_Create(t *testing.T) {
	client := &mockClient{}
	client.On("PutObject", mock.Anything, matchInput("docs", "out.yaml")).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*s3.PutObjectInput)
			assert.Equal(t, "application/yaml", aws.ToString(in.ContentType))
			_, err := io.Copy(&client.uploaded, in.Body)
			assert.NoError(t, err)
		}).
		Return(&s3.PutObjectOutput{}, nil)

	store := New(client, quietLogger())
	w, err := store.Create(context.Background(), "docs", "out.yaml", ContentType("yaml"))
	require.NoError(t, err)

	for _, chunk := range []string{"id: 1\n", "name: ", "alice\n"} {
		n, err := w.Write([]byte(chunk))
		require.NoError(t, err)
		assert.Equal(t, len(chunk), n)
	}
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close returns the first result")

	assert.Equal(t, "id: 1\nname: alice\n", client.uploaded.String())
	client.AssertExpectations(t)
}

func TestStore_CreateUploadError(t *testing.T) {
	client := &mockClient{}
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("AccessDenied"))

	store := New(client, quietLogger())
	w, err := store.Create(context.Background(), "docs", "out.json", "")
	require.NoError(t, err)

	// The failed upload closes the pipe, so writes and close both fail.
	err = w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestStore_CreateValidation(t *testing.T) {
	store := New(&mockClient{}, nil)
	_, err := store.Create(context.Background(), "", "key", "")
	assert.Error(t, err)
	_, err = store.Create(context.Background(), "bucket", "", "")
	assert.Error(t, err)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		input   string
		want    Location
		wantErr bool
	}{
		{"s3://docs/a/b.json", Location{Bucket: "docs", Key: "a/b.json"}, false},
		{"s3://docs/out/", Location{Bucket: "docs", Key: "out/"}, false},
		{"s3://docs", Location{Bucket: "docs"}, false},
		{"s3:///key", Location{}, true},
		{"/tmp/file.json", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocation(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "s3://docs/a.json", Location{Bucket: "docs", Key: "a.json"}.String())
	assert.True(t, IsLocation("s3://x/y"))
	assert.False(t, IsLocation("x/y"))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "reports/a.json", ObjectKey("reports/a.json", "json"))

	key := ObjectKey("reports/", ".yaml")
	require.True(t, strings.HasPrefix(key, "reports/"))
	require.True(t, strings.HasSuffix(key, ".yaml"))
	_, err := uuid.Parse(strings.TrimSuffix(strings.TrimPrefix(key, "reports/"), ".yaml"))
	assert.NoError(t, err)

	bare := ObjectKey("", "")
	_, err = uuid.Parse(bare)
	assert.NoError(t, err)
	assert.NotEqual(t, bare, ObjectKey("", ""))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType("json"))
	assert.Equal(t, "application/msgpack", ContentType("msgpack"))
	assert.Equal(t, "application/octet-stream", ContentType("toml"))
}
