// Package media models local media capture for call sessions.
//
// Capture is the injected primitive the call controller uses to acquire
// microphone and camera tracks; it may fail with a permission or device
// error, which aborts the join attempt. The concrete device capture is built
// on pion/mediadevices and is only available on Linux (V4L2 + malgo); other
// platforms are expected to supply their own Capture implementation, for
// example one fed by a browser or mobile shell.
//
// Stream and Track wrap pion local tracks with the enablement bookkeeping the
// session toggles need. Teardown paths always close every track so devices
// are never held without an active call.
package media
