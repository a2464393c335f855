package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

var (
	firestoreClient   *firestore.Client
	firestoreClientMu sync.Mutex
)

func gcpProjectID() string {
	// Prefer explicit override.
	if v := os.Getenv("FIRESTORE_PROJECT_ID"); v != "" {
		return v
	}
	// Cloud Run/Cloud Functions often set this.
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	// Common fallback.
	if v := os.Getenv("GCP_PROJECT"); v != "" {
		return v
	}
	return ""
}

// GetFirestoreClient returns the shared Firestore client. It uses
// Application Default Credentials unless FIRESTORE_CREDENTIALS_JSON is set.
func GetFirestoreClient(ctx context.Context) (*firestore.Client, error) {
	firestoreClientMu.Lock()
	defer firestoreClientMu.Unlock()

	if firestoreClient != nil {
		return firestoreClient, nil
	}

	projectID := gcpProjectID()
	if projectID == "" {
		return nil, errors.New("FIRESTORE_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var opts []option.ClientOption
	if credJSON := strings.TrimSpace(os.Getenv("FIRESTORE_CREDENTIALS_JSON")); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	firestoreClient = client
	return firestoreClient, nil
}

// AccountCollection is the Firestore collection holding one document per
// tenant account (settings + secret reference).
func AccountCollection() string {
	return EnvString("ACCOUNT_COLLECTION", "accounts")
}

// AutomationStateCollection holds one automation-state document per account.
func AutomationStateCollection() string {
	return EnvString("AUTOMATION_STATE_COLLECTION", "automation_state")
}
