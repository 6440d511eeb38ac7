// Package email renders the daily digest as HTML and delivers it via
// SMTP or SendGrid.
package email

import (
	"context"
	"fmt"
	"time"

	"aidigest/app/content"
)

// Sender delivers a rendered digest to a recipient.
type Sender interface {
	SendDigest(ctx context.Context, digest content.Digest, to, from string) error
}

var weekdaysCN = map[time.Weekday]string{
	time.Monday:    "周一",
	time.Tuesday:   "周二",
	time.Wednesday: "周三",
	time.Thursday:  "周四",
	time.Friday:    "周五",
	time.Saturday:  "周六",
	time.Sunday:    "周日",
}

// Subject builds the localized subject line for a digest date.
func Subject(date time.Time) string {
	return fmt.Sprintf("AI 晨报 · %02d月%02d日 %s", int(date.Month()), date.Day(), weekdaysCN[date.Weekday()])
}
