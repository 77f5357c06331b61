package notification

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a notification does not exist or is not
	// visible to the viewer; callers cannot tell the two apart.
	ErrNotFound = errors.New("notification not found")
)

// ListLimit caps how many notifications a viewer is served.
const ListLimit = 50

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// QueryFor returns the viewer's visible notifications, newest first,
		// capped at limit. The stored rows must satisfy Visible(v, n).
		QueryFor(ctx context.Context, v Viewer, limit int) ([]Notification, error)
		CountUnreadFor(ctx context.Context, v Viewer) (int, error)
		MarkRead(ctx context.Context, id string) error
		// MarkAllReadFor applies the viewer's visibility predicate as the
		// update filter; already-read rows are untouched.
		MarkAllReadFor(ctx context.Context, v Viewer) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListFor returns the notifications the viewer may see, newest first, capped
// at ListLimit. A viewer with missing scope gets an empty list, not an error.
func (svc *Service) ListFor(ctx context.Context, v Viewer) ([]Notification, error) {
	if !v.Scoped() {
		return []Notification{}, nil
	}
	return svc.repo.QueryFor(ctx, v, ListLimit)
}

func (svc *Service) UnreadCount(ctx context.Context, v Viewer) (int, error) {
	if !v.Scoped() {
		return 0, nil
	}
	return svc.repo.CountUnreadFor(ctx, v)
}

// MarkRead marks a single notification read, but only if it is a member of
// the viewer's visible set. Authorization is by recomputation: the visible
// set is re-derived here rather than kept as a stored ACL, which is O(visible
// set) per call and would want an indexed check at larger scale.
func (svc *Service) MarkRead(ctx context.Context, id string, v Viewer) error {
	visible, err := svc.ListFor(ctx, v)
	if err != nil {
		return err
	}
	for _, n := range visible {
		if n.ID == id {
			return svc.repo.MarkRead(ctx, id)
		}
	}
	return ErrNotFound
}

// MarkAllRead marks every notification visible to the viewer as read.
// Idempotent: a second call is a no-op, not an error.
func (svc *Service) MarkAllRead(ctx context.Context, v Viewer) error {
	if !v.Scoped() {
		return nil
	}
	return svc.repo.MarkAllReadFor(ctx, v)
}
