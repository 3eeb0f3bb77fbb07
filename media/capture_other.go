//go:build !linux

package media

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// DeviceCapture is unavailable off Linux: pion/mediadevices needs
// platform-specific drivers (V4L2/malgo). Hosts on other platforms inject
// their own Capture implementation.
type DeviceCapture struct {
	api *webrtc.API
}

// NewDeviceCapture builds a capture whose API uses the default codec set so
// receive-only sessions still negotiate correctly.
func NewDeviceCapture() (*DeviceCapture, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}
	return &DeviceCapture{api: webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine))}, nil
}

// API returns the webrtc API for this platform.
func (d *DeviceCapture) API() *webrtc.API { return d.api }

// Request always fails on this platform.
func (d *DeviceCapture) Request(context.Context, Constraints) (*Stream, error) {
	return nil, ErrUnsupportedPlatform
}
