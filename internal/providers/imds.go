package providers

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"

	apperrors "github.com/pratik-mahalle/ec2pull/internal/pkg/errors"
)

const (
	defaultMetadataEndpoint = "http://169.254.169.254"
	instanceIDPath          = "instance-id"
)

// IdentityOptions configures the instance metadata lookup
type IdentityOptions struct {
	// Endpoint overrides the metadata service address; empty uses the SDK default
	Endpoint string
	Timeout  time.Duration
}

// MetadataAPI is the part of the IMDS client used for identity lookups
type MetadataAPI interface {
	GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error)
}

// NewMetadataClient returns an IMDS client for opts.Endpoint
func NewMetadataClient(opts IdentityOptions) *imds.Client {
	return imds.New(imds.Options{Endpoint: opts.Endpoint})
}

// LookupInstanceIdentity returns the id of the instance this process runs on
func LookupInstanceIdentity(ctx context.Context, opts IdentityOptions) (string, error) {
	return InstanceIdentity(ctx, NewMetadataClient(opts), opts)
}

// InstanceIdentity reads instance-id through api
func InstanceIdentity(ctx context.Context, api MetadataAPI, opts IdentityOptions) (string, error) {
	endpoint := nonEmpty(opts.Endpoint, defaultMetadataEndpoint)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	out, err := api.GetMetadata(ctx, &imds.GetMetadataInput{Path: instanceIDPath})
	if err != nil {
		return "", apperrors.MetadataUnavailable(endpoint, err)
	}
	defer out.Content.Close()

	body, err := io.ReadAll(out.Content)
	if err != nil {
		return "", apperrors.MetadataUnavailable(endpoint, err)
	}

	id := strings.TrimSpace(string(body))
	if id == "" {
		return "", apperrors.MetadataUnavailable(endpoint, io.ErrUnexpectedEOF)
	}
	return id, nil
}
