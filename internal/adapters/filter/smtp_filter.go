package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// SMTPFilter is a content-filter adapter for mail streams. It accepts
// messages over SMTP, scans them for phishing indicators, stamps the
// verdict into headers and re-injects the message upstream.
type SMTPFilter struct {
	service         *core.ScanService
	logger          *zap.Logger
	listenAddr      string
	server          *smtp.Server
	blockHighRisk   bool
	levelHeader     string
	scoreHeader     string
	reasonsHeader   string
	upstreamAddr    string
	upstreamPort    int
	upstreamEnabled bool
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(
	service *core.ScanService,
	logger *zap.Logger,
	listenAddr string,
	blockHighRisk bool,
	levelHeader string,
	scoreHeader string,
	reasonsHeader string,
	upstreamAddr string,
	upstreamPort int,
	upstreamEnabled bool,
) *SMTPFilter {
	return &SMTPFilter{
		service:         service,
		logger:          logger,
		listenAddr:      listenAddr,
		blockHighRisk:   blockHighRisk,
		levelHeader:     levelHeader,
		scoreHeader:     scoreHeader,
		reasonsHeader:   reasonsHeader,
		upstreamAddr:    upstreamAddr,
		upstreamPort:    upstreamPort,
		upstreamEnabled: upstreamEnabled,
	}
}

// ProcessMessage scans a raw message and returns the assessment.
// This is mainly used for testing or direct API calls.
func (f *SMTPFilter) ProcessMessage(ctx context.Context, rawMessage string) (*core.EmailAssessment, error) {
	return f.service.ScanEmail(ctx, rawMessage)
}

// Start starts the SMTP filter service
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// sendUpstream re-injects the stamped message on the configured port
func (f *SMTPFilter) sendUpstream(sender string, recipients []string, messageData []byte) error {
	upstreamAddr := fmt.Sprintf("%s:%d", f.upstreamAddr, f.upstreamPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", upstreamAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect upstream: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(messageData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for our filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scans the message, stamps verdict headers and forwards upstream
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	assessment, scanErr := s.filter.service.ScanEmail(ctx, string(rawData))
	if scanErr != nil {
		s.filter.logger.Error("Failed to scan message",
			zap.Error(scanErr),
			zap.String("sender", s.sender))
		// Pass the message through unflagged rather than lose mail.
		assessment = &core.EmailAssessment{
			RuleCheck: core.RuleCheckResult{Level: core.RiskLow},
		}
	}

	level := assessment.RuleCheck.Level
	for _, result := range assessment.Results {
		level = core.MaxLevel(level, result.Overall)
	}

	if scanErr == nil && s.filter.blockHighRisk && level == core.RiskHigh {
		s.filter.logger.Info("Rejecting high-risk message",
			zap.String("sender", s.sender),
			zap.Int("score", assessment.RuleCheck.Score))
		return fmt.Errorf("550 Rejected as phishing (score: %d)", assessment.RuleCheck.Score)
	}

	// Stamp verdict headers ahead of the original message
	var stamped bytes.Buffer
	fmt.Fprintf(&stamped, "%s: %s\r\n", s.filter.levelHeader, level)
	fmt.Fprintf(&stamped, "%s: %d\r\n", s.filter.scoreHeader, assessment.RuleCheck.Score)
	if len(assessment.RuleCheck.Reasons) > 0 {
		fmt.Fprintf(&stamped, "%s: %s\r\n", s.filter.reasonsHeader, strings.Join(assessment.RuleCheck.Reasons, "; "))
	}
	if scanErr != nil {
		fmt.Fprintf(&stamped, "X-Phish-Scan-Error: %s\r\n", scanErr.Error())
	}
	stamped.Write(rawData)

	if s.filter.upstreamEnabled {
		if err := s.filter.sendUpstream(s.sender, s.recipients, stamped.Bytes()); err != nil {
			s.filter.logger.Error("Failed to forward message upstream",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Upstream forwarding disabled, message not re-injected")
	}

	s.filter.logger.Info("Processed message",
		zap.String("sender", s.sender),
		zap.String("level", string(level)),
		zap.Int("score", assessment.RuleCheck.Score),
		zap.Int("urls", assessment.TotalURLs))

	return nil
}

// Logout handles SMTP logout (not needed for our filter)
func (s *smtpSession) Logout() error {
	return nil
}
