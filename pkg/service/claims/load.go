package claims

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
	"github.com/secmon-lab/hlpreview/pkg/utils/safe"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

type loadOptions struct {
	delimiter      rune
	required       []string
	storageOptions []option.ClientOption
}

type Option func(*loadOptions)

func WithDelimiter(d rune) Option {
	return func(o *loadOptions) {
		o.delimiter = d
	}
}

// WithRequiredColumns adds normalized columns that must exist in the header
func WithRequiredColumns(columns ...string) Option {
	return func(o *loadOptions) {
		o.required = append(o.required, columns...)
	}
}

// WithStorageClientOptions configures the Cloud Storage client used for gs:// paths
func WithStorageClientOptions(opts ...option.ClientOption) Option {
	return func(o *loadOptions) {
		o.storageOptions = append(o.storageOptions, opts...)
	}
}

// Load reads the claim file at path, a local file or gs://bucket/object
func Load(ctx context.Context, path string, opts ...Option) (*Source, error) {
	o := &loadOptions{delimiter: DefaultDelimiter}
	for _, opt := range opts {
		opt(o)
	}

	var (
		raw []byte
		err error
	)
	if strings.HasPrefix(path, gcsScheme) {
		raw, err = readObject(ctx, path, o.storageOptions)
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			err = goerr.Wrap(err, "failed to read claim file", goerr.V("path", path))
		}
	}
	if err != nil {
		return nil, err
	}

	src, err := Parse(Decode(raw), o.delimiter, o.required)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse claim file", goerr.V("path", path))
	}

	logging.From(ctx).Info("claims loaded", "path", path, "count", src.Count())
	return src, nil
}

// ParseGCSPath splits gs://bucket/object
func ParseGCSPath(path string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(path, gcsScheme)
	bucket, object, found := strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", goerr.New("invalid Cloud Storage path", goerr.V("path", path))
	}
	return bucket, object, nil
}

func readObject(ctx context.Context, path string, opts []option.ClientOption) ([]byte, error) {
	bucket, object, err := ParseGCSPath(path)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	defer safe.Close(ctx, client)

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open claim object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	defer safe.Close(ctx, reader)

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read claim object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	return raw, nil
}

// Decode returns UTF-8 text for raw. A UTF-8 or UTF-16 byte order mark is
// honoured; text without one that is not valid UTF-8 is read as Windows-1252,
// the encoding spreadsheet tools use for "CSV" exports.
func Decode(raw []byte) io.Reader {
	fallback := unicode.UTF8.NewDecoder()
	if !utf8.Valid(raw) {
		fallback = charmap.Windows1252.NewDecoder()
	}
	return transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(fallback.Transformer))
}
