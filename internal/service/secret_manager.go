package service

import (
	"context"
	"fmt"
	"strings"

	"viralclip/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

type SecretManagerService interface {
	// GetSecret returns the latest version of the named secret. name is
	// either a bare secret ID or a full resource path.
	GetSecret(ctx context.Context, name string) (string, error)
	Close() error
}

type secretManagerService struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretManagerService(ctx context.Context, cfg *config.Config) (SecretManagerService, error) {
	projectID := cfg.GCPProjectID
	if projectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set for the current environment")
	}

	opts := []option.ClientOption{option.WithQuotaProject(projectID)}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &secretManagerService{
		client:    client,
		projectID: projectID,
	}, nil
}

func secretVersionName(projectID, name string) string {
	if strings.HasPrefix(name, "projects/") {
		if strings.Contains(name, "/versions/") {
			return name
		}
		return name + "/versions/latest"
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name)
}

func (s *secretManagerService) GetSecret(ctx context.Context, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretVersionName(s.projectID, name),
	}

	result, err := s.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}

	return strings.TrimSpace(string(result.Payload.Data)), nil
}

func (s *secretManagerService) Close() error {
	return s.client.Close()
}

// ResolveLLMAPIKey returns LLM_API_KEY, or reads LLM_API_KEY_SECRET from
// Secret Manager when the key is not set directly.
func ResolveLLMAPIKey(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.LLMAPIKey != "" || cfg.LLMAPIKeySecret == "" {
		return cfg.LLMAPIKey, nil
	}
	sm, err := NewSecretManagerService(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer sm.Close()
	key, err := sm.GetSecret(ctx, cfg.LLMAPIKeySecret)
	if err != nil {
		return "", fmt.Errorf("resolving LLM API key: %w", err)
	}
	return key, nil
}
