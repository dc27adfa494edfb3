// Package gochannel builds the in-process pub/sub used when no broker is configured.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	localBuffer  = 1000
	replayBuffer = 10
)

// CreateChannel returns a non-persistent pub/sub for local runs. Submissions
// published while nobody subscribes are dropped.
func CreateChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: localBuffer}, logger)
}

// CreateTestChannel replays earlier messages to late subscribers.
func CreateTestChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: replayBuffer,
		Persistent:          true,
	}, logger)
}
