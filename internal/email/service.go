package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to, orderID string, total int, items []OrderItem) error {
	subject := fmt.Sprintf("Order confirmed (#%s)", shortID(orderID))
	body := BuildOrderConfirmationBody(orderID, total, items)
	return s.send(to, subject, body)
}

// SendReprintConfirmation tells the customer a replacement order is on the way
func (s *Service) SendReprintConfirmation(to, issueID, reprintOrderID string) error {
	subject := fmt.Sprintf("Your replacement order is on the way (issue #%s)", shortID(issueID))
	body := BuildReprintBody(issueID, reprintOrderID)
	return s.send(to, subject, body)
}

// SendRefundConfirmation tells the customer a refund was approved
func (s *Service) SendRefundConfirmation(to, issueID string, amount int) error {
	subject := fmt.Sprintf("Your refund has been approved (issue #%s)", shortID(issueID))
	body := BuildRefundBody(issueID, amount)
	return s.send(to, subject, body)
}

// SendInfoRequest asks the customer for more details on an issue
func (s *Service) SendInfoRequest(to, issueID, note string) error {
	subject := fmt.Sprintf("We need more information about your issue (#%s)", shortID(issueID))
	body := BuildInfoRequestBody(issueID, note)
	return s.send(to, subject, body)
}

// SendIssueStatusUpdate notifies the customer of an issue status change
func (s *Service) SendIssueStatusUpdate(to, issueID, status string) error {
	subject := fmt.Sprintf("Update on your issue (#%s)", shortID(issueID))
	body := BuildIssueStatusBody(issueID, status)
	return s.send(to, subject, body)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
