package notify

import (
	"context"
	"time"

	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

// Daily summaries go out shortly before midnight IST so the day's numbers are
// complete.
const reportHour, reportMinute = 23, 55

// Reporter schedules the owner's nightly summary.
type Reporter struct {
	service *Service
	logger  *logging.Logger
}

// NewReporter creates a reporter for the given notification service.
func NewReporter(service *Service, logger *logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reporter{service: service, logger: logger}
}

// Run blocks, sending a daily report at 23:55 IST until ctx is canceled.
// Intended to run in its own goroutine from main.
func (r *Reporter) Run(ctx context.Context) {
	for {
		wait := time.Until(nextReportTime(time.Now()))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if ok := r.service.SendDailyReport(ctx); !ok {
				r.logger.Warn("daily report not delivered")
			} else {
				r.logger.Info("daily report sent")
			}
		}
	}
}

func nextReportTime(now time.Time) time.Time {
	ist := now.In(istLocation)
	next := time.Date(ist.Year(), ist.Month(), ist.Day(), reportHour, reportMinute, 0, 0, istLocation)
	if !next.After(ist) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
