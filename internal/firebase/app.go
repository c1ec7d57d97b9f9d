// Package firebase initializes the Firebase Admin SDK from service account
// fields in the environment.
package firebase

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Credentials are the fields of a service account key. When ClientEmail or
// PrivateKey is empty the SDK falls back to application default credentials,
// which is also how the Firestore emulator is reached.
type Credentials struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
}

// App holds one Firebase app and hands out its service clients.
type App struct {
	app       *fb.App
	projectID string
}

// NewApp creates the Firebase app.
//
// The private key in .env files usually has literal "\n" sequences; they are
// turned into real newlines because the SDK expects a PEM block.
func NewApp(ctx context.Context, creds Credentials) (*App, error) {
	if creds.ProjectID == "" {
		return nil, fmt.Errorf("firebase project id is required")
	}

	var opts []option.ClientOption
	if creds.ClientEmail != "" && creds.PrivateKey != "" {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON(creds)))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: creds.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return &App{app: app, projectID: creds.ProjectID}, nil
}

func credentialsJSON(creds Credentials) []byte {
	privateKey := strings.ReplaceAll(creds.PrivateKey, "\\n", "\n")
	return []byte(fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, creds.ProjectID, privateKey, creds.ClientEmail))
}

func (a *App) ProjectID() string { return a.projectID }

// Firestore returns a new Firestore client. The caller closes it.
func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := a.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firestore client: %w", err)
	}
	return client, nil
}

func (a *App) Auth(ctx context.Context) (*auth.Client, error) {
	client, err := a.app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get auth client: %w", err)
	}
	return client, nil
}

func (a *App) Messaging(ctx context.Context) (*messaging.Client, error) {
	client, err := a.app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return client, nil
}
