// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package mailer hands outbound mail to a background queue. Use cases
// enqueue fire-and-forget and never wait on delivery.
package mailer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/donelist/donelist/pkg/errutil"
)

// Message is one piece of outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one message. Implementations may block; the queue
// isolates callers from that.
type Sender interface {
	Send(msg Message) error
}

// LogSender writes deliveries to the log instead of sending them.
// Mail content and transport are outside this core; the default wiring
// uses this sender.
type LogSender struct {
	Logger *slog.Logger
}

// Send implements Sender.
func (s LogSender) Send(msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail delivered", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Queue drains messages to a Sender on one background goroutine.
type Queue struct {
	sender Sender
	logger *slog.Logger
	ch     chan Message

	closeOnce sync.Once
	done      chan struct{}
}

// queueBuffer bounds in-flight messages; enqueue drops when full rather
// than blocking a request.
const queueBuffer = 64

// NewQueue creates a Queue and starts its worker.
func NewQueue(sender Sender, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		sender: sender,
		logger: logger,
		ch:     make(chan Message, queueBuffer),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for msg := range q.ch {
		if err := q.sender.Send(msg); err != nil {
			errutil.LogWarn(q.logger, "mail delivery failed", err)
		}
	}
}

// Enqueue hands a message to the worker without waiting. Messages are
// dropped with a warning when the buffer is full.
func (q *Queue) Enqueue(msg Message) {
	select {
	case q.ch <- msg:
	default:
		q.logger.Warn("mail queue full, dropping message", "to", msg.To)
	}
}

// DeliverResetInstructions implements user.ResetMailer.
func (q *Queue) DeliverResetInstructions(email, token string) {
	q.Enqueue(Message{
		To:      email,
		Subject: "Reset password instructions",
		Body:    fmt.Sprintf("Use this token to reset your password: %s", token),
	})
}

// Close stops accepting messages and waits for the worker to drain.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.ch)
	})
	<-q.done
}
