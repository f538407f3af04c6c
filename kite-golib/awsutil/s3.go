package awsutil

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/kiteco/activeself/kite-golib/envutil"
	"github.com/kiteco/activeself/kite-golib/errors"
)

// localRegion, when set, skips the bucket location lookup.
var localRegion = envutil.GetenvDefault("AWS_REGION", "")

// IsS3URI returns true if the path is an s3 uri.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ValidateURI parses an s3://bucket/key uri.
func ValidateURI(uri string) (*url.URL, error) {
	s3url, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if s3url.Scheme != "s3" {
		return nil, errors.Errorf("%s: url is not a s3 path", uri)
	}
	if s3url.Host == "" || strings.Trim(s3url.Path, "/") == "" {
		return nil, errors.Errorf("%s: s3 url needs a bucket and a key", uri)
	}
	return s3url, nil
}

// NewS3Reader returns a io.ReadCloser that will read the contents
// of the object pointed to by the uri (s3://bucket-name/path/to/file).
func NewS3Reader(uri string) (io.ReadCloser, error) {
	s3url, err := ValidateURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := clientFor(s3url)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s3url.Host),
		Key:    aws.String(strings.TrimPrefix(s3url.Path, "/")),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting %s", uri)
	}
	return out.Body, nil
}

// NamedWriteCloser is a file-like object extending io.WriteCloser with a string Name() similar to os.File.Name()
type NamedWriteCloser interface {
	io.WriteCloser
	Name() string
}

type bufferedS3Writer struct {
	f     *os.File
	s3uri *url.URL
}

// NewBufferedS3Writer returns an io.WriteCloser that will write
// to disk and upload to S3 on Close
func NewBufferedS3Writer(uri string) (NamedWriteCloser, error) {
	s3url, err := ValidateURI(uri)
	if err != nil {
		return nil, err
	}

	f, err := ioutil.TempFile("", "s3buffer")
	if err != nil {
		return nil, err
	}
	return bufferedS3Writer{f: f, s3uri: s3url}, nil
}

// Write writes to disk
func (w bufferedS3Writer) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Close copies the written data to s3 and removes the local buffer.
func (w bufferedS3Writer) Close() error {
	defer os.Remove(w.f.Name())
	defer w.f.Close()

	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	client, err := clientFor(w.s3uri)
	if err != nil {
		return err
	}

	_, err = client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(w.s3uri.Host),
		Key:    aws.String(strings.TrimPrefix(w.s3uri.Path, "/")),
		Body:   w.f,
	})
	return errors.WrapfOrNil(err, "error uploading %s", w.s3uri)
}

// Abort removes the local buffer without uploading it.
func (w bufferedS3Writer) Abort() error {
	w.f.Close()
	return os.Remove(w.f.Name())
}

func (w bufferedS3Writer) Name() string {
	return w.s3uri.String()
}

func clientFor(s3url *url.URL) (*s3.S3, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	region, err := objectRegion(sess, s3url)
	if err != nil {
		return nil, fmt.Errorf("unable to determine region: %s", err)
	}
	return s3.New(sess, aws.NewConfig().WithRegion(region)), nil
}

func objectRegion(sess *session.Session, uri *url.URL) (string, error) {
	if localRegion != "" {
		return localRegion, nil
	}

	s3client := s3.New(sess, aws.NewConfig().WithRegion("us-west-1"))
	out, err := s3client.GetBucketLocation(&s3.GetBucketLocationInput{
		Bucket: aws.String(uri.Host),
	})
	if err != nil {
		return "", err
	}
	if out.LocationConstraint == nil {
		return "us-east-1", nil
	}
	return *out.LocationConstraint, nil
}
