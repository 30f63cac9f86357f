package push

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/choreme/choreme/internal/store"
)

// Notifier fans domain events out to a user's push subscriptions. Expired
// subscriptions are pruned as they are discovered.
type Notifier struct {
	service *Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(service *Service, subs *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		service: service,
		subs:    subs,
		logger:  logger.With("component", "push"),
	}
}

// TaskAssigned notifies the owner that a new task occurrence was created.
func (n *Notifier) TaskAssigned(ownerID int64, choreName string, startDate time.Time) {
	n.send(ownerID, Payload{
		Title: "New chore",
		Body:  fmt.Sprintf("%s is due %s", choreName, startDate.Format("Mon Jan 2")),
		URL:   "/chores",
		Tag:   "task-assigned",
	})
}

// TaskPaid notifies the owner that a finished task was paid out.
func (n *Notifier) TaskPaid(ownerID int64, choreName string, points int) {
	n.send(ownerID, Payload{
		Title: "Points earned",
		Body:  fmt.Sprintf("You earned %d points for %s", points, choreName),
		URL:   "/points",
		Tag:   "task-paid",
	})
}

// RedemptionResolved notifies the redeemer of the parent's decision.
func (n *Notifier) RedemptionResolved(userID int64, rewardTitle string, approved bool) {
	verdict := "approved"
	if !approved {
		verdict = "declined"
	}
	n.send(userID, Payload{
		Title: "Reward " + verdict,
		Body:  fmt.Sprintf("Your request for %s was %s", rewardTitle, verdict),
		URL:   "/rewards",
		Tag:   "redemption-resolved",
	})
}

func (n *Notifier) send(userID int64, payload Payload) {
	subs, err := n.subs.ListByUser(userID)
	if err != nil {
		n.logger.Error("list subscriptions", "user_id", userID, "error", err)
		return
	}

	for _, sub := range subs {
		if err := n.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				n.subs.DeleteByEndpoint(sub.Endpoint)
				continue
			}
			n.logger.Warn("send notification", "user_id", userID, "error", err)
		}
	}
}
