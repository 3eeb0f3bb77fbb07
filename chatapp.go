// Package chatapp wires the Firestore-backed group chat call system together.
//
// The package is a thin facade: New connects to Firestore, configures device
// capture and TURN credential fetching and hands the assembled collaborators
// to the call manager. Embedders that bring their own storage or capture can
// inject replacements through Options.
package chatapp

import (
	"context"
	"fmt"
	"os"

	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/RaeezAli/Chat-App/call"
	"github.com/RaeezAli/Chat-App/firebase"
	"github.com/RaeezAli/Chat-App/ice"
	"github.com/RaeezAli/Chat-App/media"
	"github.com/RaeezAli/Chat-App/roster"
	"github.com/RaeezAli/Chat-App/signaling"
)

// meteredAPIKeyEnv supplies the TURN credential API key when Options does not.
const meteredAPIKeyEnv = "METERED_API_KEY"

// Options configures a Client. Self is required; everything else has a
// working default.
type Options struct {
	// Self identifies the local participant in call documents and signaling.
	Self roster.Participant

	// ProjectID and CredentialsFile locate the Firebase project. Both may be
	// empty when application default credentials carry the project.
	ProjectID       string
	CredentialsFile string

	// TURNCredentialsURL is the metered.live-compatible endpoint serving
	// time-limited TURN credentials. Empty means STUN-only operation.
	TURNCredentialsURL string
	// TURNAPIKey authenticates the credential fetch. Empty falls back to the
	// METERED_API_KEY environment variable.
	TURNAPIKey string

	// Capture overrides local device capture. Nil selects camera and
	// microphone capture on supported platforms.
	Capture media.Capture
	// Roster, Channel and Announcer override the Firestore-backed
	// implementations, for tests and embedders with their own storage.
	Roster    roster.Store
	Channel   signaling.Channel
	Announcer call.Announcer
}

// Client is one user's connection to the call system.
type Client struct {
	calls *call.Manager
	fb    *firebase.Client
}

// New assembles a Client. The Firestore connection is only established when
// at least one of the storage-backed collaborators is not injected.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.Self.UserID == "" {
		return nil, fmt.Errorf("chatapp: options must carry the local participant identity")
	}

	apiKey := opts.TURNAPIKey
	if apiKey == "" {
		apiKey = os.Getenv(meteredAPIKeyEnv)
	}
	iceProvider := ice.NewProvider(opts.TURNCredentialsURL, apiKey, nil)

	var fb *firebase.Client
	if opts.Roster == nil || opts.Channel == nil || opts.Announcer == nil {
		var err error
		fb, err = firebase.NewClient(ctx, firebase.Config{
			ProjectID:       opts.ProjectID,
			CredentialsFile: opts.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
	}

	store := opts.Roster
	if store == nil {
		store = fb.Roster()
	}
	channel := opts.Channel
	if channel == nil {
		channel = fb.Channel()
	}
	announcer := opts.Announcer
	if announcer == nil {
		announcer = fb.Announcer()
	}

	capture := opts.Capture
	var api *webrtc.API
	if capture == nil {
		device, err := media.NewDeviceCapture()
		if err != nil {
			if fb != nil {
				fb.Close()
			}
			return nil, fmt.Errorf("configure device capture: %w", err)
		}
		capture = device
		api = device.API()
	}

	calls, err := call.NewManager(call.Config{
		Self:      opts.Self,
		Capture:   capture,
		Roster:    store,
		Channel:   channel,
		ICE:       iceProvider,
		Announcer: announcer,
		API:       api,
	})
	if err != nil {
		if fb != nil {
			fb.Close()
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "New",
		"user_id":  opts.Self.UserID,
	}).Info("Chat call client ready")
	return &Client{calls: calls, fb: fb}, nil
}

// Calls returns the call session manager.
func (c *Client) Calls() *call.Manager { return c.calls }

// Close ends any active session and releases the Firestore connection.
func (c *Client) Close() error {
	if err := c.calls.EndCall(context.Background()); err != nil && err != call.ErrNoActiveCall {
		logrus.WithFields(logrus.Fields{
			"function": "Close",
			"error":    err.Error(),
		}).Warn("Failed to end active session during close")
	}
	if c.fb != nil {
		return c.fb.Close()
	}
	return nil
}
