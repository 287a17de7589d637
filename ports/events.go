package ports

import "context"

// EventPublisher notifies other instances about session lifecycle changes.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, sessionID string) error
	PublishLogout(ctx context.Context, address string, tokenID string) error
}
