package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-service/internal/model"
)

type recordingSender struct {
	phones   []string
	messages []string
	fail     bool
}

func (s *recordingSender) Send(_ context.Context, phone, message string) error {
	if s.fail {
		return errors.New("gateway down")
	}
	s.phones = append(s.phones, phone)
	s.messages = append(s.messages, message)
	return nil
}

type recordingMarker struct {
	columns []string
	doc     *model.DeliveryDocument
}

func (m *recordingMarker) MarkSmsSent(_ context.Context, doc *model.DeliveryDocument, column string) error {
	m.columns = append(m.columns, column)
	m.doc = doc
	return nil
}

func testDocument() *model.DeliveryDocument {
	return &model.DeliveryDocument{
		Number:        "TSL-00042",
		CustomerName:  "Ahmet Yılmaz",
		CustomerPhone: "+905551112233",
		DeliveryDate:  time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		Vehicle:       &model.Vehicle{Name: "Anadolu 1"},
	}
}

func TestScheduledMessageContents(t *testing.T) {
	msg := ScheduledMessage(testDocument())
	assert.Contains(t, msg, "Ahmet Yılmaz")
	assert.Contains(t, msg, "TSL-00042")
	assert.Contains(t, msg, "10.06.2024")
	assert.Contains(t, msg, "Anadolu 1")
	assert.Contains(t, msg, "planlanmıştır")
}

func TestDispatcherSendsPerStatus(t *testing.T) {
	cases := []struct {
		status model.DeliveryStatus
		column string
		phrase string
	}{
		{model.DeliveryStatusReady, "scheduled_sms_sent", "planlanmıştır"},
		{model.DeliveryStatusInTransit, "dispatched_sms_sent", "yola çıkmıştır"},
		{model.DeliveryStatusDelivered, "delivered_sms_sent", "teslim edilmiştir"},
	}
	for _, tc := range cases {
		sender := &recordingSender{}
		marker := &recordingMarker{}
		dispatcher := NewSMSDispatcher(sender, marker, zerolog.Nop())

		dispatcher.OnStateTransition(context.Background(), testDocument(), tc.status)

		require.Len(t, sender.messages, 1, string(tc.status))
		assert.Contains(t, sender.messages[0], tc.phrase)
		assert.Equal(t, []string{tc.column}, marker.columns)
	}
}

func TestDispatcherManualPhoneWins(t *testing.T) {
	sender := &recordingSender{}
	dispatcher := NewSMSDispatcher(sender, &recordingMarker{}, zerolog.Nop())

	doc := testDocument()
	doc.ManualPhone = "+905559998877"
	dispatcher.OnStateTransition(context.Background(), doc, model.DeliveryStatusReady)

	require.Len(t, sender.phones, 1)
	assert.Equal(t, "+905559998877", sender.phones[0])
}

func TestDispatcherDeduplicates(t *testing.T) {
	sender := &recordingSender{}
	dispatcher := NewSMSDispatcher(sender, &recordingMarker{}, zerolog.Nop())

	doc := testDocument()
	doc.ScheduledSmsSent = true
	dispatcher.OnStateTransition(context.Background(), doc, model.DeliveryStatusReady)

	assert.Empty(t, sender.messages)
}

func TestDispatcherSkipsWithoutPhone(t *testing.T) {
	sender := &recordingSender{}
	marker := &recordingMarker{}
	dispatcher := NewSMSDispatcher(sender, marker, zerolog.Nop())

	doc := testDocument()
	doc.CustomerPhone = ""
	dispatcher.OnStateTransition(context.Background(), doc, model.DeliveryStatusReady)

	assert.Empty(t, sender.messages)
	assert.Empty(t, marker.columns)
}

func TestDispatcherSwallowsSendFailure(t *testing.T) {
	sender := &recordingSender{fail: true}
	marker := &recordingMarker{}
	dispatcher := NewSMSDispatcher(sender, marker, zerolog.Nop())

	// Must not panic and must not mark the SMS as sent.
	dispatcher.OnStateTransition(context.Background(), testDocument(), model.DeliveryStatusReady)
	assert.Empty(t, marker.columns)
}

func TestDispatcherIgnoresOtherStatuses(t *testing.T) {
	sender := &recordingSender{}
	dispatcher := NewSMSDispatcher(sender, &recordingMarker{}, zerolog.Nop())

	dispatcher.OnStateTransition(context.Background(), testDocument(), model.DeliveryStatusCancelled)
	dispatcher.OnStateTransition(context.Background(), testDocument(), model.DeliveryStatusDraft)

	assert.Empty(t, sender.messages)
}
