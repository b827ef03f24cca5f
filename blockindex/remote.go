package blockindex

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/indexprefix/errors"
	"github.com/bsv-blockchain/indexprefix/util"
)

// hashStringSize is the length of a hash in hex.
const hashStringSize = chainhash.HashSize * 2

// RemoteResolver asks a block explorer for the hash at each height, using
// GET {baseURL}block-height/{height} which answers with the hash as plain text.
type RemoteResolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteResolver returns a resolver for the explorer API at baseURL. A
// missing trailing slash is added.
func NewRemoteResolver(baseURL string, httpClient *http.Client) *RemoteResolver {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &RemoteResolver{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (r *RemoteResolver) HashAtHeight(ctx context.Context, height uint32) (*chainhash.Hash, error) {
	url := fmt.Sprintf("%sblock-height/%d", r.baseURL, height)

	body, err := util.DoHTTPRequestWithClient(ctx, r.httpClient, url)
	if err != nil {
		return nil, err
	}

	hashStr := strings.TrimSpace(string(body))
	if len(hashStr) != hashStringSize {
		return nil, errors.NewNetworkInvalidResponseError("[%s] expected a %d character hash, got %q", url, hashStringSize, truncate(hashStr, 80))
	}

	hash, err := chainhash.NewHashFromStr(hashStr)
	if err != nil {
		return nil, errors.NewNetworkInvalidResponseError("[%s] returned an invalid hash %q", url, hashStr, err)
	}

	return hash, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
