// Package firebase builds the handles to the hosted backend services. When
// the core configuration subset is absent, or construction fails, the
// application receives inert stand-ins instead, so no call site ever
// branches on configuration presence.
package firebase

import (
	"context"
	"log"
	"os"

	"church-site/backend/internal/config"
	"church-site/backend/internal/docstore"
	"church-site/backend/internal/storage"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Clients bundles the backend handles used by the rest of the application.
// Docs and Bucket are always non-nil; Auth and Messaging are nil in stub
// mode and callers treat them as optional capabilities.
type Clients struct {
	App       *firebase.App
	Auth      *auth.Client
	Messaging *messaging.Client
	Docs      docstore.Store
	Bucket    storage.Bucket

	ProjectID string
	BucketID  string

	// Stub is true when the backend is not configured and the inert
	// implementations are in use.
	Stub bool
}

// NewClients constructs the real backend handles, or the stubs when the
// configuration is incomplete or construction fails. Degrading is never
// fatal: an unconfigured deployment still serves pages, just without data.
func NewClients(ctx context.Context, cfg config.Config) *Clients {
	if !cfg.Configured() {
		log.Println("WARN: FIREBASE_PROJECT_ID not set, running with stub backend")
		return stubClients(cfg)
	}

	clients, err := newRealClients(ctx, cfg)
	if err != nil {
		log.Printf("WARN: backend init failed (%v), running with stub backend", err)
		return stubClients(cfg)
	}
	return clients
}

func newRealClients(ctx context.Context, cfg config.Config) (*Clients, error) {
	var opts []option.ClientOption
	// On Cloud Run, Application Default Credentials are used automatically.
	// Locally, GOOGLE_APPLICATION_CREDENTIALS points at a service account
	// JSON file.
	if cred := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}

	fs, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	st, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	msg, _ := app.Messaging(ctx) // optional

	return &Clients{
		App:       app,
		Auth:      authClient,
		Messaging: msg,
		Docs:      docstore.NewFirestore(fs),
		Bucket:    storage.NewGCSBucket(st, cfg.StorageBucket, cfg.SignedURLServiceAccountEmail),
		ProjectID: cfg.ProjectID,
		BucketID:  cfg.StorageBucket,
	}, nil
}

func stubClients(cfg config.Config) *Clients {
	return &Clients{
		Docs:      docstore.NewStub(),
		Bucket:    storage.NewStubBucket(),
		ProjectID: cfg.ProjectID,
		BucketID:  cfg.StorageBucket,
		Stub:      true,
	}
}
