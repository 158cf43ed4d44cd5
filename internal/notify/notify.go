// Package notify posts playback lifecycle events to the status text channel.
package notify

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const embedColor = 0xb01e66

// Discord sends one embed per lifecycle event. A token bucket caps the
// message rate so a flapping pipeline cannot spam the channel; terminal
// events (finished, stopped, error) bypass the cap.
type Discord struct {
	dg *discordgo.Session

	mu        sync.Mutex
	channelID string
	limiter   *rate.Limiter
}

func NewDiscord(dg *discordgo.Session, channelID string) *Discord {
	return &Discord{
		dg:        dg,
		channelID: channelID,
		limiter:   rate.NewLimiter(rate.Limit(0.5), 5),
	}
}

// SetChannel retargets notifications, used when the operator rebinds the
// status channel at runtime.
func (d *Discord) SetChannel(channelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channelID = channelID
}

func (d *Discord) NotifyDownloading(title string) {
	d.send(false, "⬇️ Downloading", title)
}

func (d *Discord) NotifyPlaying(title string) {
	d.send(false, "▶️ Now Streaming", title)
}

func (d *Discord) NotifyFinished(title string) {
	d.send(true, "⏹ Finished", title)
}

func (d *Discord) NotifyStopped(title string) {
	d.send(true, "⏹ Stopped", title)
}

func (d *Discord) NotifyError(title string, err error) {
	d.send(true, "❌ Playback Error", fmt.Sprintf("%s\n`%v`", title, err))
}

func (d *Discord) send(terminal bool, header, body string) {
	d.mu.Lock()
	channelID := d.channelID
	d.mu.Unlock()

	if channelID == "" {
		return
	}
	if !terminal && !d.limiter.Allow() {
		log.Debug().Str("header", header).Msg("notification dropped by rate limit")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       header,
		Description: body,
		Color:       embedColor,
	}
	if _, err := d.dg.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("sending notification")
	}
}

// Nop discards all events, used when no status channel is configured.
type Nop struct{}

func (Nop) NotifyDownloading(string)  {}
func (Nop) NotifyPlaying(string)      {}
func (Nop) NotifyFinished(string)     {}
func (Nop) NotifyStopped(string)      {}
func (Nop) NotifyError(string, error) {}
