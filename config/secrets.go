package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

var (
	secretsClient   *secretmanager.Client
	secretsClientMu sync.Mutex
)

func getSecretsClient(ctx context.Context) (*secretmanager.Client, error) {
	secretsClientMu.Lock()
	defer secretsClientMu.Unlock()

	if secretsClient != nil {
		return secretsClient, nil
	}

	var opts []option.ClientOption
	if credJSON := strings.TrimSpace(os.Getenv("SECRETS_CREDENTIALS_JSON")); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	secretsClient = client
	return secretsClient, nil
}

// AccessSecret fetches a secret payload by full resource name, e.g.
// "projects/p/secrets/propwise-api-key-acme/versions/latest".
func AccessSecret(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("secret name is empty")
	}

	client, err := getSecretsClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return "", err
	}
	return string(resp.GetPayload().GetData()), nil
}
