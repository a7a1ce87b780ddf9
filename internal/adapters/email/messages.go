package email

import "fmt"

// BookingDetails carries the session facts the booking emails mention.
type BookingDetails struct {
	PlayerName string
	CoachName  string
	Location   string
	Date       string // YYYY-MM-DD
	StartTime  string // HH:MM
	EndTime    string // HH:MM
}

// BookingConfirmation builds the email sent when a booking is confirmed.
func BookingConfirmation(to string, d BookingDetails) SendRequest {
	return SendRequest{
		To:      []string{to},
		Subject: fmt.Sprintf("Booking confirmed: %s %s", d.Date, d.StartTime),
		HTML: fmt.Sprintf(
			`<p>Kia ora %s,</p>
<p>Your squash session is confirmed.</p>
<ul>
<li>Coach: %s</li>
<li>Court: %s</li>
<li>Date: %s</li>
<li>Time: %s&ndash;%s</li>
</ul>
<p>Please arrive ten minutes early. See you on court!</p>
<p>Courtside Academy</p>`,
			d.PlayerName, d.CoachName, d.Location, d.Date, d.StartTime, d.EndTime),
	}
}

// BookingCancellation builds the email sent when a booking is cancelled.
func BookingCancellation(to string, d BookingDetails) SendRequest {
	return SendRequest{
		To:      []string{to},
		Subject: fmt.Sprintf("Booking cancelled: %s %s", d.Date, d.StartTime),
		HTML: fmt.Sprintf(
			`<p>Kia ora %s,</p>
<p>Your session with %s on %s at %s has been cancelled.</p>
<p>The slot has been released. You can book another time from your dashboard.</p>
<p>Courtside Academy</p>`,
			d.PlayerName, d.CoachName, d.Date, d.StartTime),
	}
}
