package notification

import "fmt"

// Templates renders customer-facing email subjects and bodies. Layouts mirror
// the branded header/body/footer structure used across the company's
// transactional emails.
type Templates struct {
	CompanyName string
}

// ResponseSubject renders the subject line for a case response.
func (t Templates) ResponseSubject(ticketTitle string) string {
	return fmt.Sprintf("%s - Response to: %s", t.CompanyName, ticketTitle)
}

// ConfirmationSubject renders the subject line for a ticket-received notice.
func (t Templates) ConfirmationSubject(ticketID int64) string {
	return fmt.Sprintf("%s - Ticket #%d Received", t.CompanyName, ticketID)
}

// ResponseHTML renders the HTML body for a case response.
func (t Templates) ResponseHTML(customerName string, ticketID int64, ticketTitle, responseText string, sentBy string) string {
	greeting := customerName
	if greeting == "" {
		greeting = "there"
	}
	signature := fmt.Sprintf("<p style='font-size: 15px; margin-top: 25px;'>Best regards,<br><strong>%s Team</strong></p>", t.CompanyName)
	if sentBy != "" {
		signature = fmt.Sprintf("<p style='font-size: 15px; margin-top: 25px;'>Best regards,<br><strong>%s</strong><br>%s</p>", sentBy, t.CompanyName)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #667eea; padding: 30px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="color: white; margin: 0; font-size: 28px;">%s</h1>
    <p style="color: rgba(255,255,255,0.9); margin: 10px 0 0 0; font-size: 16px;">Case Response</p>
  </div>
  <div style="background: #ffffff; padding: 30px; border: 1px solid #e0e0e0;">
    <p style="font-size: 16px;">Hello %s,</p>
    <p style="font-size: 16px;">We have an update regarding your case:</p>
    <div style="background: #f5f5f5; border-left: 4px solid #667eea; padding: 15px; margin: 20px 0;">
      <p style="margin: 0 0 8px 0; font-weight: 600; color: #666; font-size: 14px;">CASE #%d</p>
      <p style="margin: 0; font-size: 16px; font-weight: 600;">%s</p>
    </div>
    <div style="border: 1px solid #e0e0e0; padding: 20px; margin: 20px 0;">
      <p style="font-weight: 600; margin: 0 0 12px 0; color: #667eea; font-size: 14px;">RESPONSE:</p>
      <div style="white-space: pre-wrap; font-size: 15px;">%s</div>
    </div>
    <p style="font-size: 16px;">If you have any questions or need further assistance, please don't hesitate to reach out.</p>
    %s
  </div>
  <div style="background: #f5f5f5; padding: 20px; text-align: center; border: 1px solid #e0e0e0; border-top: none;">
    <p style="font-size: 13px; color: #666; margin: 0;">This is an automated message from %s</p>
    <p style="font-size: 13px; color: #666; margin: 8px 0 0 0;">Please do not reply to this email</p>
  </div>
</body>
</html>`, t.CompanyName, greeting, ticketID, ticketTitle, responseText, signature, t.CompanyName)
}

// ResponseText renders the plain text fallback for a case response.
func (t Templates) ResponseText(customerName string, ticketID int64, ticketTitle, responseText string, sentBy string) string {
	greeting := customerName
	if greeting == "" {
		greeting = "there"
	}
	signature := fmt.Sprintf("Best regards,\n%s Team", t.CompanyName)
	if sentBy != "" {
		signature = fmt.Sprintf("Best regards,\n%s\n%s", sentBy, t.CompanyName)
	}
	return fmt.Sprintf(`%s - Case Response

Hello %s,

We have an update regarding your case:

CASE #%d: %s

Response:
%s

If you have any questions or need further assistance, please don't hesitate to reach out.

%s

---
This is an automated message from %s
Please do not reply to this email
`, t.CompanyName, greeting, ticketID, ticketTitle, responseText, signature, t.CompanyName)
}

// ConfirmationHTML renders the HTML body for a ticket-received notice.
func (t Templates) ConfirmationHTML(customerName string, ticketID int64, ticketTitle, description, category string) string {
	greeting := customerName
	if greeting == "" {
		greeting = "there"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #667eea; padding: 30px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="color: white; margin: 0; font-size: 28px;">%s</h1>
    <p style="color: rgba(255,255,255,0.9); margin: 10px 0 0 0; font-size: 16px;">Ticket Confirmation</p>
  </div>
  <div style="background: #ffffff; padding: 30px; border: 1px solid #e0e0e0;">
    <p style="font-size: 16px;">Hello %s,</p>
    <p style="font-size: 16px;">Thank you for contacting us! We have received your support request and our team will review it shortly.</p>
    <div style="background: #f5f5f5; border-left: 4px solid #667eea; padding: 15px; margin: 20px 0;">
      <p style="margin: 0 0 8px 0; font-weight: 600; color: #666; font-size: 14px;">TICKET #%d</p>
      <p style="margin: 0 0 8px 0; font-size: 18px; font-weight: 600;">%s</p>
      <p style="margin: 0; font-size: 14px; color: #666;">Category: %s</p>
    </div>
    <div style="border: 1px solid #e0e0e0; padding: 20px; margin: 20px 0;">
      <p style="font-weight: 600; margin: 0 0 12px 0; color: #667eea; font-size: 14px;">YOUR MESSAGE:</p>
      <div style="white-space: pre-wrap; font-size: 15px;">%s</div>
    </div>
    <p style="font-size: 16px;">We will get back to you as soon as possible. You can expect a response within 1-2 business days.</p>
    <p style="font-size: 16px; margin-top: 30px;">Best regards,<br>%s Support Team</p>
  </div>
  <div style="background: #f5f5f5; padding: 20px; text-align: center; border: 1px solid #e0e0e0; border-top: none;">
    <p style="font-size: 13px; color: #666; margin: 0;">This is an automated confirmation from %s</p>
    <p style="font-size: 13px; color: #666; margin: 8px 0 0 0;">Please do not reply to this email</p>
  </div>
</body>
</html>`, t.CompanyName, greeting, ticketID, ticketTitle, category, description, t.CompanyName, t.CompanyName)
}

// ConfirmationText renders the plain text fallback for a ticket-received notice.
func (t Templates) ConfirmationText(customerName string, ticketID int64, ticketTitle, description, category string) string {
	greeting := customerName
	if greeting == "" {
		greeting = "there"
	}
	return fmt.Sprintf(`%s - Ticket Confirmation

Hello %s,

Thank you for contacting us! We have received your support request and our team will review it shortly.

TICKET #%d: %s
Category: %s

Your Message:
%s

We will get back to you as soon as possible. You can expect a response within 1-2 business days.

Best regards,
%s Support Team

---
This is an automated confirmation from %s
Please do not reply to this email
`, t.CompanyName, greeting, ticketID, ticketTitle, category, description, t.CompanyName, t.CompanyName)
}
