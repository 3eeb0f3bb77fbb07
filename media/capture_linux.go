//go:build linux

package media

import (
	"context"
	"fmt"

	"github.com/pion/interceptor"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/camera"     // registers the V4L2 camera adapter
	_ "github.com/pion/mediadevices/pkg/driver/microphone" // registers the malgo microphone adapter
	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"
)

// DeviceCapture acquires camera and microphone tracks via pion/mediadevices.
// Peer connections carrying these tracks must be created from the API this
// capture exposes, so the negotiated codecs match the capture encoders.
type DeviceCapture struct {
	selector *mediadevices.CodecSelector
	api      *webrtc.API
}

// NewDeviceCapture configures a VP8+Opus codec selector and the matching
// webrtc API.
func NewDeviceCapture() (*DeviceCapture, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, fmt.Errorf("configure VP8 encoder: %w", err)
	}
	vpxParams.BitRate = 1_000_000

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, fmt.Errorf("configure Opus encoder: %w", err)
	}

	selector := mediadevices.NewCodecSelector(
		mediadevices.WithVideoEncoders(&vpxParams),
		mediadevices.WithAudioEncoders(&opusParams),
	)

	mediaEngine := &webrtc.MediaEngine{}
	selector.Populate(mediaEngine)

	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(registry),
	)

	return &DeviceCapture{selector: selector, api: api}, nil
}

// API returns the webrtc API configured with this capture's codecs.
func (d *DeviceCapture) API() *webrtc.API { return d.api }

// Request opens the requested devices and returns their tracks as a Stream.
// Acquisition fails as a unit: if any requested kind cannot be opened the
// error is returned and nothing is left held.
func (d *DeviceCapture) Request(_ context.Context, c Constraints) (*Stream, error) {
	if !c.Audio && !c.Video {
		return nil, fmt.Errorf("%w: no media kinds requested", ErrNoDevice)
	}

	constraints := mediadevices.MediaStreamConstraints{Codec: d.selector}
	if c.Video {
		constraints.Video = func(mc *mediadevices.MediaTrackConstraints) {
			// Raw formats only; MJPEG camera nodes can emit malformed frames
			// that poison the VP8 encoder.
			mc.FrameFormat = prop.FrameFormatOneOf{
				frame.FormatYUYV,
				frame.FormatI420,
				frame.FormatI444,
				frame.FormatRGBA,
			}
			mc.Width = prop.IntRanged{Max: 640}
			mc.Height = prop.IntRanged{Max: 480}
		}
	}
	if c.Audio {
		constraints.Audio = func(*mediadevices.MediaTrackConstraints) {}
	}

	ms, err := mediadevices.GetUserMedia(constraints)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Request",
			"audio":    c.Audio,
			"video":    c.Video,
			"error":    err.Error(),
		}).Error("Media acquisition failed")
		return nil, fmt.Errorf("get user media: %w", err)
	}

	stream := NewStream()
	for _, t := range ms.GetTracks() {
		track := t
		track.OnEnded(func(err error) {
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Request",
					"track_id": track.ID(),
					"error":    err.Error(),
				}).Warn("Local track ended")
			}
		})
		stream.AddTrack(NewTrack(track, func() error {
			track.Close()
			return nil
		}))
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Request",
		"track_count": len(stream.Tracks()),
		"audio":       c.Audio,
		"video":       c.Video,
	}).Info("Local media captured")
	return stream, nil
}
