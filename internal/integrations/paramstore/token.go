package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// tokenPayload is the JSON shape stored in SSM for the provider API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// TokenParameterName returns the parameter holding the provider token under prefix.
func TokenParameterName(prefix string) string {
	return strings.TrimRight(strings.TrimSpace(prefix), "/") + "/open-ai-token"
}

// FetchToken reads the named parameter and extracts the token field.
func FetchToken(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("paramstore: getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("paramstore: fetch token: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("paramstore: unmarshal token value as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", errors.New("paramstore: API token is empty")
	}
	return tp.Token, nil
}

// ResolveToken returns envToken when set, otherwise the token stored under
// prefix. It is meant to run once at process start.
func ResolveToken(ctx context.Context, envToken string, getter Getter, prefix string) (string, error) {
	if tok := strings.TrimSpace(envToken); tok != "" {
		return tok, nil
	}
	if strings.TrimSpace(prefix) == "" || getter == nil {
		return "", errors.New("paramstore: no API token in environment and no parameter prefix configured")
	}
	return FetchToken(ctx, getter, TokenParameterName(prefix))
}
