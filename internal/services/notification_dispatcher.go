package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// NotificationDispatcher is the only way the domain talks to users and
// admins outside the HTTP response. Every method is fire-and-forget: it
// enqueues work and logs, never failing the caller.
type NotificationDispatcher interface {
	SendEmail(ctx context.Context, to string, key TemplateKey, values map[string]string)
	NotifyUser(ctx context.Context, n models.Notification)
	// AlertAdmins fans a new-lead alert out to Telegram and the admin inbox.
	AlertAdmins(ctx context.Context, values map[string]string)

	// Deliver executes one task; it is the queue's handler.
	Deliver(ctx context.Context, t Task) error
}

type notificationDispatcher struct {
	queue      TaskQueue
	sender     EmailSender
	alerter    AdminAlerter
	notifRepo  repositories.NotificationRepository
	adminEmail string
}

func NewNotificationDispatcher(
	queue TaskQueue,
	sender EmailSender,
	alerter AdminAlerter,
	notifRepo repositories.NotificationRepository,
	adminEmail string,
) NotificationDispatcher {
	return &notificationDispatcher{
		queue:      queue,
		sender:     sender,
		alerter:    alerter,
		notifRepo:  notifRepo,
		adminEmail: adminEmail,
	}
}

func (d *notificationDispatcher) SendEmail(ctx context.Context, to string, key TemplateKey, values map[string]string) {
	if to == "" {
		utils.Logger.WithField("template", key).Debug("Skipping email without recipient")
		return
	}
	d.enqueue(ctx, Task{Kind: TaskEmail, To: to, Template: key, Values: values})
}

func (d *notificationDispatcher) NotifyUser(ctx context.Context, n models.Notification) {
	if n.UserID == "" {
		return
	}
	// The id is fixed before enqueueing so a retried insert stays single.
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	d.enqueue(ctx, Task{Kind: TaskInApp, Notification: &n})
}

func (d *notificationDispatcher) AlertAdmins(ctx context.Context, values map[string]string) {
	d.enqueue(ctx, Task{Kind: TaskTelegram, Text: FormatLeadAlert(values)})
	if d.adminEmail != "" {
		d.enqueue(ctx, Task{Kind: TaskEmail, To: d.adminEmail, Template: TemplateAdminNewLead, Values: values})
	}
}

func (d *notificationDispatcher) enqueue(ctx context.Context, t Task) {
	if err := d.queue.Enqueue(ctx, t); err != nil {
		utils.Logger.WithError(err).WithField("kind", t.Kind).Warn("Notification not queued")
	}
}

func (d *notificationDispatcher) Deliver(ctx context.Context, t Task) error {
	switch t.Kind {
	case TaskEmail:
		content, err := RenderEmail(t.Template, t.Values)
		if err != nil {
			return err
		}
		return d.sender.Send(ctx, t.To, content)

	case TaskInApp:
		if t.Notification == nil {
			return fmt.Errorf("in_app task without notification")
		}
		err := d.notifRepo.Insert(ctx, t.Notification)
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err

	case TaskTelegram:
		return d.alerter.Alert(ctx, t.Text)
	}
	return fmt.Errorf("unknown task kind %q", t.Kind)
}
