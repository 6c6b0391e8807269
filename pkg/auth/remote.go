package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteVerifier asks an external identity provider to validate the token.
// The provider answers with the uid, email and role bound to it.
type RemoteVerifier struct {
	client    *resty.Client
	verifyURL string
}

func NewRemoteVerifier(verifyURL string) *RemoteVerifier {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &RemoteVerifier{
		client:    client,
		verifyURL: verifyURL,
	}
}

type remoteVerifyResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	var result remoteVerifyResponse

	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&result).
		Post(r.verifyURL)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("verify token: provider returned %s", resp.Status())
	}
	if result.UID == "" {
		return nil, fmt.Errorf("verify token: provider returned no uid")
	}

	return &Identity{
		AuthUID: result.UID,
		Email:   result.Email,
		Role:    result.Role,
	}, nil
}
