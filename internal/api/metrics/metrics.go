// Package metrics defines and registers all custom Prometheus metrics for the
// Right Home Cosmos API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default registry via promauto; the router exposes
// them on /metrics together with the echoprometheus request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "righthome"

// RegistrationsTotal counts successful account registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid", "unverified", or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// VerificationEmailsTotal counts verification email deliveries at
// registration time.
// Label:
//   - result: "sent" or "failed"
var VerificationEmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_emails_total",
		Help:      "Total number of verification emails attempted, by result.",
	},
	[]string{"result"},
)

// ConsultationsCreatedTotal counts consultation leads from the public form.
// Label:
//   - project_type: e.g. "Residential"
var ConsultationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consultations_created_total",
		Help:      "Total number of consultation requests submitted, by project type.",
	},
	[]string{"project_type"},
)

// GalleryUploadsTotal counts gallery image uploads.
// Label:
//   - service: the site section (e.g. "kitchens")
var GalleryUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gallery_uploads_total",
		Help:      "Total number of project images uploaded, by service category.",
	},
	[]string{"service"},
)
