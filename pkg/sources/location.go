package sources

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is an S3 bucket and key (or key prefix).
type Location struct {
	Bucket string
	Key    string
}

// ParseLocation parses s3://bucket/key. The key may be empty.
func ParseLocation(uri string) (Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("invalid S3 location %q: %w", uri, err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("invalid S3 location %q: scheme must be s3", uri)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("invalid S3 location %q: missing bucket", uri)
	}
	return Location{
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
	}, nil
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}
