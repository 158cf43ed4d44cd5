// Package hwaccel probes the local ffmpeg build for hardware video encoders.
package hwaccel

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Device identifies a hardware encoder family.
type Device string

const (
	DeviceNone  Device = "none"
	DeviceNVENC Device = "nvenc"
	DeviceQSV   Device = "qsv"
	DeviceAMF   Device = "amf"
	DeviceVT    Device = "videotoolbox"
)

var encoderNames = map[Device]string{
	DeviceNVENC: "h264_nvenc",
	DeviceQSV:   "h264_qsv",
	DeviceAMF:   "h264_amf",
	DeviceVT:    "h264_videotoolbox",
}

// probe order, roughly best-supported first
var probeOrder = []Device{DeviceNVENC, DeviceQSV, DeviceAMF, DeviceVT}

// Detect lists the hardware encoders the ffmpeg binary was built with.
// A build listing an encoder can still fail at runtime when the matching
// GPU is absent; callers keep the software path as fallback.
func Detect(ctx context.Context, ffmpegPath string) ([]Device, error) {
	out, err := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, fmt.Errorf("probing encoders: %w", err)
	}

	listing := string(out)
	var found []Device
	for _, dev := range probeOrder {
		if strings.Contains(listing, encoderNames[dev]) {
			found = append(found, dev)
		}
	}

	log.Debug().Interface("devices", found).Msg("hardware encoders detected")
	return found, nil
}

// Pick returns the preferred device when available, otherwise the first
// detected one, otherwise DeviceNone.
func Pick(detected []Device, preferred Device) Device {
	for _, dev := range detected {
		if dev == preferred {
			return dev
		}
	}
	if len(detected) > 0 {
		return detected[0]
	}
	return DeviceNone
}

// Args returns the ffmpeg encoder arguments for a device. Empty for
// DeviceNone, meaning the caller should encode in software.
func Args(dev Device) []string {
	switch dev {
	case DeviceNVENC:
		return []string{"-c:v", "h264_nvenc", "-preset", "p1", "-tune", "ll"}
	case DeviceQSV:
		return []string{"-c:v", "h264_qsv", "-preset", "veryfast"}
	case DeviceAMF:
		return []string{"-c:v", "h264_amf", "-quality", "speed"}
	case DeviceVT:
		return []string{"-c:v", "h264_videotoolbox", "-realtime", "1"}
	default:
		return nil
	}
}
