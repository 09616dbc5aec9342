package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	cause := stderrors.New("dial tcp 169.254.169.254:80: i/o timeout")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", Usage("You must specify either host or list mode."), ExitUsage},
		{"validation", ValidationError("invalid configuration", nil), ExitUsage},
		{"not found", NotFound("instance"), ExitFatal},
		{"metadata", MetadataUnavailable("http://169.254.169.254", cause), ExitFatal},
		{"provider auth", ProviderAuthError("aws", cause), ExitFatal},
		{"provider api", ProviderAPIError("ec2", cause), ExitFatal},
		{"wrapped app error", fmt.Errorf("host mode: %w", Usage("missing host")), ExitUsage},
		{"plain error", cause, ExitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("no such profile")
	err := ProviderAuthError("aws", cause)

	assert.Equal(t, "Failed to authenticate with aws: no such profile", err.Error())
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, IsCode(err, ErrCodeProviderAuth))
	assert.False(t, IsCode(cause, ErrCodeProviderAuth))

	plain := NotFound("instance for private_dns_name ip-10-0-0-1.ec2.internal")
	assert.Equal(t, "instance for private_dns_name ip-10-0-0-1.ec2.internal not found", plain.Error())
}

func TestAppError_WithDetails(t *testing.T) {
	err := ProviderAPIError("ec2", stderrors.New("throttled")).
		WithDetails(map[string]string{"aws_error_code": "RequestLimitExceeded"})

	appErr, ok := As(fmt.Errorf("list: %w", err))
	if assert.True(t, ok) {
		assert.Equal(t, map[string]string{"aws_error_code": "RequestLimitExceeded"}, appErr.Details)
	}
}
