package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/ics"
	"github.com/ajenda/ajenda/internal/client/publish"
	"github.com/ajenda/ajenda/internal/common"
	"github.com/ajenda/ajenda/internal/logging"
)

// Publisher stores a feed and hands out links to it.
type Publisher interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	ShareURL(ctx context.Context, key string) (string, time.Time, error)
}

// Link is a published feed.
type Link struct {
	Key       string
	URL       string
	ExpiresAt time.Time
	Events    int
}

// PublishService exports events as an iCalendar feed, either to a writer or
// to object storage.
type PublishService interface {
	Export(ctx context.Context, scope client.Scope, w io.Writer) (int, error)
	Publish(ctx context.Context, scope client.Scope) (*Link, error)
}

type publishService struct {
	events    EventService
	session   Session
	publisher Publisher
	domain    string
	log       logging.Logger
}

// NewPublishService builds the service. publisher may be nil, in which case
// Publish fails with publish.ErrNotConfigured and Export still works.
func NewPublishService(events EventService, s Session, publisher Publisher, domain string, log logging.Logger) PublishService {
	return &publishService{
		events:    events,
		session:   s,
		publisher: publisher,
		domain:    domain,
		log:       log.With("component", "publish"),
	}
}

func (p *publishService) Export(ctx context.Context, scope client.Scope, w io.Writer) (int, error) {
	data, n, err := p.render(ctx, scope)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, fmt.Errorf("write feed: %w", err)
	}
	return n, nil
}

func (p *publishService) Publish(ctx context.Context, scope client.Scope) (*Link, error) {
	if p.publisher == nil {
		return nil, publish.ErrNotConfigured
	}
	user := p.session.CurrentUser()
	if user == nil {
		return nil, common.ErrNotLoggedIn
	}

	data, n, err := p.render(ctx, scope)
	if err != nil {
		return nil, err
	}

	key := FeedKey(user.Username, scope)
	if err := p.publisher.Put(ctx, key, ics.ContentType, data); err != nil {
		return nil, err
	}
	link, expires, err := p.publisher.ShareURL(ctx, key)
	if err != nil {
		return nil, err
	}

	p.log.Info(ctx, "feed published", "key", key, "events", n)
	return &Link{Key: key, URL: link, ExpiresAt: expires, Events: n}, nil
}

func (p *publishService) render(ctx context.Context, scope client.Scope) ([]byte, int, error) {
	events, err := p.events.List(ctx, scope)
	if err != nil {
		return nil, 0, err
	}

	name := "ajenda"
	if u := p.session.CurrentUser(); u != nil {
		name = u.Username
	}
	if scope == client.ScopeAll {
		name += " (all)"
	}

	data, err := ics.Encode(events, ics.Options{Domain: p.domain, Name: name})
	if err != nil {
		return nil, 0, fmt.Errorf("encode feed: %w", err)
	}
	return data, len(events), nil
}

// FeedKey is the object key of a user's feed.
func FeedKey(username string, scope client.Scope) string {
	name := username + ".ics"
	if scope == client.ScopeAll {
		name = username + "-all.ics"
	}
	return path.Join("calendars", name)
}
