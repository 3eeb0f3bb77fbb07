package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Config locates the Firebase project.
type Config struct {
	// ProjectID may be empty when the credentials file carries it.
	ProjectID string
	// CredentialsFile is the path to a service account key. Empty selects
	// application default credentials.
	CredentialsFile string
}

// Client wraps the Firestore connection shared by the store, channel and
// announcer.
type Client struct {
	fs *firestore.Client
}

// NewClient connects to Firestore via the Firebase admin SDK.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to firestore: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewClient",
		"project_id": cfg.ProjectID,
	}).Info("Connected to Firestore")
	return &Client{fs: fs}, nil
}

// Roster returns the membership store backed by this client.
func (c *Client) Roster() *Roster { return &Roster{fs: c.fs} }

// Channel returns the signaling channel backed by this client.
func (c *Client) Channel() *Channel { return NewChannel(c.fs) }

// Announcer returns the system message writer backed by this client.
func (c *Client) Announcer() *Announcer { return &Announcer{fs: c.fs} }

// Close releases the Firestore connection.
func (c *Client) Close() error {
	return c.fs.Close()
}
