package sources

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/songplay-etl/pkg/apperrors"
	"github.com/ekaya-inc/songplay-etl/pkg/config"
)

// fakeS3 serves a fixed set of keys per bucket.
type fakeS3 struct {
	s3iface.S3API
	objects map[string]map[string]int64
	listed  []*s3.ListObjectsV2Input
}

func (f *fakeS3) ListObjectsV2WithContext(ctx aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	f.listed = append(f.listed, in)
	bucket, ok := f.objects[aws.StringValue(in.Bucket)]
	if !ok {
		return nil, errors.New("NoSuchBucket: The specified bucket does not exist")
	}
	out := &s3.ListObjectsV2Output{}
	for key := range bucket {
		if strings.HasPrefix(key, aws.StringValue(in.Prefix)) {
			out.Contents = append(out.Contents, &s3.Object{Key: aws.String(key)})
			break
		}
	}
	out.KeyCount = aws.Int64(int64(len(out.Contents)))
	return out, nil
}

func (f *fakeS3) HeadObjectWithContext(ctx aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	size, ok := f.objects[aws.StringValue(in.Bucket)][aws.StringValue(in.Key)]
	if !ok {
		return nil, errors.New("NotFound: Not Found")
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(size)}, nil
}

func newFake() *fakeS3 {
	return &fakeS3{
		objects: map[string]map[string]int64{
			"udacity-dend": {
				"log_data/2018/11/2018-11-01-events.json": 7151,
				"log_json_path.json":                      623,
				"song_data/A/A/A/TRAAAAK128F9318786.json": 245,
			},
		},
	}
}

func validS3Config() config.S3Config {
	return config.S3Config{
		LogData:     "s3://udacity-dend/log_data",
		LogJSONPath: "s3://udacity-dend/log_json_path.json",
		SongData:    "s3://udacity-dend/song_data",
		Region:      "us-west-2",
	}
}

func TestCheckPrefix(t *testing.T) {
	fake := newFake()
	c := NewChecker(fake, zap.NewNop())

	report, err := c.CheckPrefix(context.Background(), "song_data", "s3://udacity-dend/song_data")
	require.NoError(t, err)
	assert.Equal(t, CheckPrefix, report.Kind)
	assert.Equal(t, "song_data/A/A/A/TRAAAAK128F9318786.json", report.FirstKey)

	require.Len(t, fake.listed, 1)
	assert.Equal(t, "udacity-dend", aws.StringValue(fake.listed[0].Bucket))
	assert.Equal(t, "song_data", aws.StringValue(fake.listed[0].Prefix))
	assert.Equal(t, int64(1), aws.Int64Value(fake.listed[0].MaxKeys))
}

func TestCheckPrefix_Empty(t *testing.T) {
	c := NewChecker(newFake(), zap.NewNop())

	_, err := c.CheckPrefix(context.Background(), "log_data", "s3://udacity-dend/missing_prefix")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSourceEmpty)
	assert.Contains(t, err.Error(), "log_data")
}

func TestCheckPrefix_ListError(t *testing.T) {
	c := NewChecker(newFake(), zap.NewNop())

	_, err := c.CheckPrefix(context.Background(), "log_data", "s3://other-bucket/log_data")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrSourceEmpty)
	assert.Contains(t, err.Error(), "NoSuchBucket")
}

func TestCheckObject(t *testing.T) {
	c := NewChecker(newFake(), zap.NewNop())

	report, err := c.CheckObject(context.Background(), "log_jsonpath", "s3://udacity-dend/log_json_path.json")
	require.NoError(t, err)
	assert.Equal(t, CheckObject, report.Kind)
	assert.Equal(t, int64(623), report.Size)

	_, err = c.CheckObject(context.Background(), "log_jsonpath", "s3://udacity-dend/missing.json")
	assert.Error(t, err)

	_, err = c.CheckObject(context.Background(), "log_jsonpath", "s3://udacity-dend")
	assert.ErrorContains(t, err, "missing object key")
}

func TestVerify(t *testing.T) {
	c := NewChecker(newFake(), zap.NewNop())

	reports, err := c.Verify(context.Background(), validS3Config())
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "log_data", reports[0].Name)
	assert.Equal(t, "log_jsonpath", reports[1].Name)
	assert.Equal(t, "song_data", reports[2].Name)
}

func TestVerify_ReportsEveryFailure(t *testing.T) {
	c := NewChecker(newFake(), zap.NewNop())

	cfg := validS3Config()
	cfg.LogData = "s3://udacity-dend/no_logs"
	cfg.LogJSONPath = "s3://udacity-dend/no_paths.json"

	reports, err := c.Verify(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSourceEmpty)
	assert.Contains(t, err.Error(), "log_jsonpath")
	require.Len(t, reports, 1)
	assert.Equal(t, "song_data", reports[0].Name)
}

func TestNewS3Client(t *testing.T) {
	client, err := NewS3Client("us-west-2", true)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
