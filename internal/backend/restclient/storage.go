package restclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) Upload(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.do(ctx, request{
		method:      http.MethodPut,
		path:        apiPrefix + "/storage/" + url.PathEscape(bucket) + "/" + escapeName(name),
		raw:         r,
		size:        size,
		contentType: contentType,
	}, nil)
}

// PublicURL is computed locally; the object is served without a token.
func (c *Client) PublicURL(bucket, name string) string {
	return c.baseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapeName(name)
}

func (c *Client) Remove(ctx context.Context, bucket string, names []string) error {
	input := struct {
		Names []string `json:"names"`
	}{names}
	return c.do(ctx, request{method: http.MethodDelete, path: apiPrefix + "/storage/" + url.PathEscape(bucket), body: input}, nil)
}

func escapeName(name string) string {
	segments := strings.Split(strings.TrimLeft(name, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
