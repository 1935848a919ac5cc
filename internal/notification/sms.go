package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"delivery-service/internal/model"
)

// SentMarker records which SMS kinds already went out for a document, so a
// re-fired transition does not text the customer twice.
type SentMarker interface {
	MarkSmsSent(ctx context.Context, doc *model.DeliveryDocument, column string) error
}

// SMSDispatcher composes the three customer messages and hands them to the
// transport. Failures are logged and swallowed: a gateway outage must never
// roll back a delivery transition.
type SMSDispatcher struct {
	sender Sender
	marker SentMarker
	log    zerolog.Logger
}

func NewSMSDispatcher(sender Sender, marker SentMarker, log zerolog.Logger) *SMSDispatcher {
	return &SMSDispatcher{sender: sender, marker: marker, log: log}
}

func (d *SMSDispatcher) OnStateTransition(ctx context.Context, doc *model.DeliveryDocument, newStatus model.DeliveryStatus) {
	var message, column string
	switch newStatus {
	case model.DeliveryStatusReady:
		if doc.ScheduledSmsSent {
			return
		}
		message = ScheduledMessage(doc)
		column = "scheduled_sms_sent"
	case model.DeliveryStatusInTransit:
		if doc.DispatchedSmsSent {
			return
		}
		message = DispatchedMessage(doc)
		column = "dispatched_sms_sent"
	case model.DeliveryStatusDelivered:
		if doc.DeliveredSmsSent {
			return
		}
		message = DeliveredMessage(doc)
		column = "delivered_sms_sent"
	default:
		return
	}

	phone := doc.Phone()
	if phone == "" {
		d.log.Warn().Str("delivery", doc.Number).Msg("sms skipped, no phone number")
		return
	}

	if err := d.sender.Send(ctx, phone, message); err != nil {
		d.log.Error().Err(err).Str("delivery", doc.Number).Str("phone", phone).Msg("sms send failed")
		return
	}
	if d.marker != nil {
		if err := d.marker.MarkSmsSent(ctx, doc, column); err != nil {
			d.log.Error().Err(err).Str("delivery", doc.Number).Msg("sms marker update failed")
		}
	}
	d.log.Info().Str("delivery", doc.Number).Str("phone", phone).Str("status", string(newStatus)).Msg("sms sent")
}

func header(doc *model.DeliveryDocument) string {
	vehicle := ""
	if doc.Vehicle != nil {
		vehicle = doc.Vehicle.Name
	}
	return fmt.Sprintf("Sayın %s,\n\nTeslimat No: %s\nTarih: %s\nAraç: %s\n\n",
		doc.CustomerName, doc.Number, doc.DeliveryDate.Format("02.01.2006"), vehicle)
}

// ScheduledMessage is sent when the document becomes READY.
func ScheduledMessage(doc *model.DeliveryDocument) string {
	return header(doc) + "Teslimatınız planlanmıştır."
}

// DispatchedMessage is sent when the driver departs.
func DispatchedMessage(doc *model.DeliveryDocument) string {
	return header(doc) + "Teslimatınız yola çıkmıştır."
}

// DeliveredMessage is sent on completion.
func DeliveredMessage(doc *model.DeliveryDocument) string {
	return header(doc) + "Teslimatınız teslim edilmiştir. Bizi tercih ettiğiniz için teşekkür ederiz."
}

// LogSender writes messages to the service log instead of a gateway.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, phone, message string) error {
	s.log.Info().Str("phone", phone).Str("message", message).Msg("sms dispatch")
	return nil
}
