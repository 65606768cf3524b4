// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/gempir/go-twitch-irc/v4"
)

const messageBuffer = 256

// TwitchSource reads one channel's chat over Twitch IRC.
type TwitchSource struct {
	client  *twitch.Client
	channel string
	self    string

	out      chan Message
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewTwitchSource builds a source for channel. With an empty username the
// client joins anonymously and can only read.
func NewTwitchSource(channel, username, oauthToken string) *TwitchSource {
	channel = strings.ToLower(strings.TrimPrefix(channel, "#"))

	var client *twitch.Client
	if username == "" {
		client = twitch.NewAnonymousClient()
	} else {
		if !strings.HasPrefix(oauthToken, "oauth:") {
			oauthToken = "oauth:" + oauthToken
		}
		client = twitch.NewClient(username, oauthToken)
	}

	s := &TwitchSource{
		client:  client,
		channel: channel,
		self:    strings.ToLower(username),
		out:     make(chan Message, messageBuffer),
		stopped: make(chan struct{}),
	}
	client.OnConnect(func() {
		slog.Info("chat connected", "channel", channel)
	})
	client.OnPrivateMessage(s.onMessage)
	client.Join(channel)
	return s
}

// Messages returns the stream of chat lines.
func (s *TwitchSource) Messages() <-chan Message {
	return s.out
}

// Run connects and blocks until ctx is cancelled or the connection fails
// for good. Reconnects are handled by the IRC client.
func (s *TwitchSource) Run(ctx context.Context) error {
	defer s.stop()

	errc := make(chan error, 1)
	go func() { errc <- s.client.Connect() }()

	select {
	case <-ctx.Done():
		s.shutdown()
		<-errc
		slog.Info("chat disconnected", "channel", s.channel)
		return nil
	case err := <-errc:
		if errors.Is(err, twitch.ErrClientDisconnected) {
			return nil
		}
		return err
	}
}

// shutdown releases any callback blocked on a full buffer before
// disconnecting, since the consumer has usually stopped reading by now.
func (s *TwitchSource) shutdown() {
	s.stop()
	if err := s.client.Disconnect(); err != nil {
		slog.Warn("chat disconnect failed", "channel", s.channel, "error", err)
	}
}

func (s *TwitchSource) stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

func (s *TwitchSource) onMessage(m twitch.PrivateMessage) {
	select {
	case s.out <- toMessage(m, s.self):
	case <-s.stopped:
	}
}

func toMessage(m twitch.PrivateMessage, self string) Message {
	return Message{
		SenderIsSelf: self != "" && strings.EqualFold(m.User.Name, self),
		VoterID:      m.User.ID,
		Text:         m.Message,
	}
}
