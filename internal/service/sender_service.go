package service

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SenderService delivers receipts and alerts via SendGrid and Twilio. All
// sends are asynchronous and best-effort; failures are logged, never
// surfaced to the caller.
type SenderService struct{}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func (s *SenderService) PaymentReceipt(email, username string, detail ReceiptDetail) {
	subject := fmt.Sprintf("ParkEase payment receipt - reservation #%d", detail.ReservationID)
	plainBody := fmt.Sprintf(
		"Hello %s,\n\nYour parking spot has been released.\n\n"+
			"Reservation: #%d\n"+
			"Vehicle: %s\n"+
			"Parked at: %s\n"+
			"Left at: %s\n"+
			"Amount charged: %.2f (%s)\n\n"+
			"Thank you for choosing ParkEase.",
		username, detail.ReservationID, detail.VehicleNumber,
		detail.ParkedAt.Format("02 Jan 2006 15:04 MST"),
		detail.LeftAt.Format("02 Jan 2006 15:04 MST"),
		detail.Amount, detail.Method,
	)
	htmlBody := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your parking spot has been released.</p>"+
			"<ul><li>Reservation: #%d</li><li>Vehicle: %s</li>"+
			"<li>Parked at: %s</li><li>Left at: %s</li>"+
			"<li>Amount charged: %.2f (%s)</li></ul>"+
			"<p>Thank you for choosing ParkEase.</p>",
		username, detail.ReservationID, detail.VehicleNumber,
		detail.ParkedAt.Format("02 Jan 2006 15:04 MST"),
		detail.LeftAt.Format("02 Jan 2006 15:04 MST"),
		detail.Amount, detail.Method,
	)

	go func() {
		if err := sendEmailWithSendGrid(email, username, subject, plainBody, htmlBody); err != nil {
			log.Printf("Failed to send receipt email for reservation %d: %v", detail.ReservationID, err)
		}
	}()
}

func (s *SenderService) AutoCloseAlert(phone, vehicleNumber string, amount float64) {
	message := fmt.Sprintf(
		"ParkEase: your reservation for vehicle %s exceeded the maximum parking time and was closed. %.2f has been auto-charged.",
		vehicleNumber, amount,
	)
	go func() {
		if err := sendSMS(phone, message); err != nil {
			log.Printf("Failed to send auto-close SMS to %s: %v", phone, err)
		}
	}()
}

func sendEmailWithSendGrid(toEmail, toName, subject, plainTextContent, htmlContent string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY not set")
	}
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL not set")
	}
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "ParkEase"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	log.Printf("Email sent to %s (subject: %s)", toEmail, subject)
	return nil
}

func sendSMS(toNumber, messageBody string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")
	if accountSid == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("Twilio credentials not configured")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(messageBody)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
