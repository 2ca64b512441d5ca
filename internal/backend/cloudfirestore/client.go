// Package cloudfirestore implements the service.Gateway interface using Cloud Firestore.
// Each owner's tasks live in the document <collection>/<owner id>.
package cloudfirestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"todo/internal/config"
	"todo/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// EmulatorHostEnv selects the Firestore emulator; no credentials are needed then.
	EmulatorHostEnv = "FIRESTORE_EMULATOR_HOST"
)

// Scopes are the OAuth scopes requested at login. openid and email make the
// token response carry an id_token that identifies the owner.
var Scopes = []string{
	"https://www.googleapis.com/auth/datastore",
	"openid",
	"email",
}

// Client implements service.Gateway using Cloud Firestore.
type Client struct {
	client     *firestore.Client
	collection string
}

// New creates a Firestore client for the configured project.
// Requires oauth_client.json and token.json unless the emulator is in use.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	projectID := cfg.Firestore.ProjectID
	if projectID == "" {
		return nil, fmt.Errorf("firestore project_id not set in %s", cfg.ConfigPath())
	}

	if os.Getenv(EmulatorHostEnv) != "" {
		return NewWithOptions(ctx, projectID, cfg.Firestore.Collection)
	}

	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)

	return NewWithOptions(ctx, projectID, cfg.Firestore.Collection, option.WithTokenSource(tokenSource))
}

// NewWithOptions creates a client with explicit client options (for testing
// and the emulator).
func NewWithOptions(ctx context.Context, projectID, collection string, opts ...option.ClientOption) (*Client, error) {
	if collection == "" {
		collection = config.DefaultCollection
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &Client{client: client, collection: collection}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// GetDocument returns the owner's document.
func (c *Client) GetDocument(ctx context.Context, ownerID string) (service.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	id := service.DocumentID(ownerID)
	snap, err := c.client.Collection(c.collection).Doc(id).Get(ctx)
	if err != nil {
		return service.Document{}, wrapError(err)
	}

	return service.Document{
		ID:     snap.Ref.ID,
		Fields: snap.Data(),
	}, nil
}

// SetFields updates the given fields of an existing document.
func (c *Client) SetFields(ctx context.Context, ownerID, documentID string, fields map[string]string) error {
	if err := checkOwner(ownerID, documentID); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make([]firestore.Update, 0, len(names))
	for _, name := range names {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{name}, Value: fields[name]})
	}

	_, err := c.client.Collection(c.collection).Doc(documentID).Update(ctx, updates)
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteField removes one field from an existing document.
func (c *Client) DeleteField(ctx context.Context, ownerID, documentID, field string) error {
	if err := checkOwner(ownerID, documentID); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.client.Collection(c.collection).Doc(documentID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{field}, Value: firestore.Delete},
	})
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// CreateDocument creates the document; it fails if the document exists.
func (c *Client) CreateDocument(ctx context.Context, ownerID, documentID string, fields map[string]string) error {
	if err := checkOwner(ownerID, documentID); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	data := make(map[string]any, len(fields))
	for name, value := range fields {
		data[name] = value
	}

	_, err := c.client.Collection(c.collection).Doc(documentID).Create(ctx, data)
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// checkOwner refuses writes to a document that is not the owner's.
func checkOwner(ownerID, documentID string) error {
	if ownerID == "" {
		return errors.New("owner id required")
	}
	if documentID != service.DocumentID(ownerID) {
		return fmt.Errorf("document %s does not belong to the signed-in owner", documentID)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return fmt.Errorf("request timed out")
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("token expired or revoked (run: todo login)")
	case codes.NotFound:
		return service.ErrNotFound
	case codes.AlreadyExists:
		return service.ErrAlreadyExists
	}

	return err
}
