package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/doctorbookings/homevisit-api/internal/leads"
	"github.com/doctorbookings/homevisit-api/internal/observability/metrics"
	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

// AlertSender delivers a formatted alert to the business owner's chat.
type AlertSender interface {
	Configured() bool
	SendMessage(ctx context.Context, text string) error
}

// PhoneClick records a "Call Now" button click on the site; a synthetic
// pseudo-lead with no patient fields.
type PhoneClick struct {
	PhoneNumber string    `json:"phoneNumber"`
	Source      string    `json:"source"`
	UserAgent   string    `json:"userAgent"`
	Timestamp   time.Time `json:"timestamp"`
}

// Service formats owner alerts and delivers them best-effort. Every Send
// method reports delivery with a bare boolean; failures are logged and never
// propagate to the booking flow. Missing credentials mean false, not an
// error.
type Service struct {
	telegram      AlertSender
	email         EmailSender
	businessEmail string
	metrics       *metrics.Metrics
	logger        *logging.Logger

	// Same-day lead and click tallies for the nightly report. Reset on IST
	// day rollover; lost on restart like everything else here.
	mu         sync.Mutex
	day        string
	leadCount  int
	clickCount int
}

// NewService creates a notification service. email may be nil to disable the
// email copy of lead alerts.
func NewService(telegram AlertSender, email EmailSender, businessEmail string, m *metrics.Metrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		telegram:      telegram,
		email:         email,
		businessEmail: businessEmail,
		metrics:       m,
		logger:        logger,
	}
}

var istLocation = loadIST()

func loadIST() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// SendLeadAlert tells the owner a patient booked a visit. Returns true only
// when the Telegram delivery succeeded.
func (s *Service) SendLeadAlert(ctx context.Context, lead *leads.Lead) bool {
	s.bump(&s.leadCount)

	delivered := s.sendTelegram(ctx, formatLeadAlert(lead))

	if s.email != nil && s.businessEmail != "" {
		msg := EmailMessage{
			To:      s.businessEmail,
			Subject: fmt.Sprintf("New Doctor Booking - %s", lead.City),
			Body:    formatLeadEmail(lead),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("lead alert email failed", "error", err)
			s.metrics.ObserveAlert("email", false)
		} else {
			s.metrics.ObserveAlert("email", true)
		}
	}

	return delivered
}

// SendPhoneClickAlert tells the owner someone clicked a call button.
func (s *Service) SendPhoneClickAlert(ctx context.Context, click PhoneClick) bool {
	s.bump(&s.clickCount)
	return s.sendTelegram(ctx, formatPhoneClickAlert(click))
}

// SendDailyReport sends the owner a summary of the day's lead activity.
func (s *Service) SendDailyReport(ctx context.Context) bool {
	leadsToday, clicksToday := s.today()
	return s.sendTelegram(ctx, formatDailyReport(time.Now().In(istLocation), leadsToday, clicksToday))
}

func (s *Service) sendTelegram(ctx context.Context, text string) bool {
	if s.telegram == nil || !s.telegram.Configured() {
		s.logger.Debug("telegram alerts disabled, skipping delivery")
		return false
	}
	if err := s.telegram.SendMessage(ctx, text); err != nil {
		s.logger.Error("telegram alert failed", "error", err)
		s.metrics.ObserveAlert("telegram", false)
		return false
	}
	s.metrics.ObserveAlert("telegram", true)
	return true
}

func (s *Service) bump(counter *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := time.Now().In(istLocation).Format("2006-01-02")
	if s.day != today {
		s.day = today
		s.leadCount = 0
		s.clickCount = 0
	}
	*counter++
}

func (s *Service) today() (leadCount, clickCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := time.Now().In(istLocation).Format("2006-01-02")
	if s.day != today {
		return 0, 0
	}
	return s.leadCount, s.clickCount
}

func formatLeadAlert(lead *leads.Lead) string {
	return fmt.Sprintf(`🚨 *NEW DOCTOR BOOKING* 🚨

👤 *Patient:* %s
🎂 *Age:* %d years
📱 *Phone:* %s
📍 *Location:* %s
🩺 *Service:* %s

⏰ *Time:* %s
📊 *Source:* %s

🎯 *ACTION REQUIRED:* Call patient within 2 minutes!
🚑 *Doctor dispatch within 30 minutes*`,
		lead.Name,
		lead.Age,
		lead.Phone,
		strings.ToUpper(lead.City),
		lead.Service,
		lead.Timestamp.In(istLocation).Format("2 Jan 2006, 3:04 PM"),
		lead.Source,
	)
}

func formatLeadEmail(lead *leads.Lead) string {
	return fmt.Sprintf(`A new booking has come in!

Patient: %s
Age: %d
Phone: %s
City: %s
Service: %s
Time: %s

Call the patient within 2 minutes to confirm the visit.`,
		lead.Name,
		lead.Age,
		lead.Phone,
		strings.ToUpper(lead.City),
		lead.Service,
		lead.Timestamp.In(istLocation).Format("2 Jan 2006, 3:04 PM"),
	)
}

func formatPhoneClickAlert(click PhoneClick) string {
	device := "Desktop"
	if strings.Contains(click.UserAgent, "Mobile") {
		device = "Mobile"
	}
	return fmt.Sprintf(`📞 *PHONE BUTTON CLICKED* 📞

📱 *Number Called:* %s
🎯 *Button Location:* %s
⏰ *Time:* %s
🖥️ *Device:* %s

💡 *Note:* User clicked call button - high intent lead!
🎯 *ACTION:* Be ready to receive call or call back if missed`,
		click.PhoneNumber,
		strings.ToUpper(click.Source),
		click.Timestamp.In(istLocation).Format("2 Jan 2006, 3:04 PM"),
		device,
	)
}

func formatDailyReport(day time.Time, leadsToday, clicksToday int) string {
	return fmt.Sprintf(`📊 *DAILY REPORT - %s* 📊

📝 *Form Submissions:* %d
📞 *Phone Button Clicks:* %d
🎯 *Total Leads:* %d

💡 *Next Steps:*
- Follow up on any leads still waiting for a call
- Check server analytics for detailed reports`,
		day.Format("Mon 2 Jan 2006"),
		leadsToday,
		clicksToday,
		leadsToday+clicksToday,
	)
}
