package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/logging"
	"github.com/adri-yano/social-media-app/metrics"
	"github.com/adri-yano/social-media-app/publisher"
)

// notifier publishes domain events after a write has been stored. A failed
// publish never fails the request.
type notifier struct {
	publisher *publisher.EventPublisher
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
}

func (n *notifier) emit(r *http.Request, subject string, publish func(*publisher.EventPublisher) error) {
	if !n.publisher.Enabled() {
		return
	}

	err := publish(n.publisher)
	n.metrics.RecordEvent(subject, err)
	if err != nil {
		logging.FromContext(r.Context(), n.logger).
			WithError(err).
			WithField("subject", subject).
			Error("Failed to publish event")
	}
}
