package service

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/hackmatch/internal/adapters/chat"
	workerpool "github.com/okian/hackmatch/internal/adapters/mq/worker"
	"github.com/okian/hackmatch/internal/adapters/notify"
	"github.com/okian/hackmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for join times, reminders and statuses.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithWorkerCount sets the number of delivery workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the notification queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the reminder deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSuggestionLimit caps teammate suggestions.
func WithSuggestionLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.suggestionLimit = n
		}
	}
}

// WithInboxLimit sets the default page size of inbox listings.
func WithInboxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.inboxLimit = n
		}
	}
}

// WithReminderWindow sets how far ahead deadline reminders look.
func WithReminderWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reminderWindow = d
		}
	}
}

// WithTeamSizeDefaults sets the team sizes applied to hackathons that omit them.
func WithTeamSizeDefaults(minSize, maxSize int) Option {
	return func(s *Service) {
		if minSize > 0 && maxSize >= minSize {
			s.minTeamSize = minSize
			s.maxTeamSize = maxSize
		}
	}
}

// WithInbox replaces the in-memory notification inbox.
func WithInbox(inbox notify.Inbox) Option {
	return func(s *Service) {
		if inbox != nil {
			s.inbox = inbox
		}
	}
}

// WithSinks adds delivery sinks next to the inbox.
func WithSinks(sinks ...workerpool.Deliverer) Option {
	return func(s *Service) {
		s.extraSinks = append(s.extraSinks, sinks...)
	}
}

// WithChatPublisher sets where team chat messages are published.
func WithChatPublisher(pub chat.Publisher) Option {
	return func(s *Service) {
		s.chatPub = pub
	}
}
