package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// TemplateKey names one transactional email.
type TemplateKey string

const (
	TemplateSavedSearchMatch    TemplateKey = "saved_search_match"
	TemplatePriceDrop           TemplateKey = "price_drop"
	TemplateAppointmentReceived TemplateKey = "appointment_received"
	TemplateAppointmentStatus   TemplateKey = "appointment_status"
	TemplateInquiryAutoReply    TemplateKey = "inquiry_auto_reply"
	TemplateAdminNewLead        TemplateKey = "admin_new_lead"
)

// EmailContent is a fully rendered message.
type EmailContent struct {
	Subject string
	Plain   string
	HTML    string
}

const emailSignature = "Krishna Properties Team"

const emailLayoutHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #1f2937; background-color: #f7f5f0; margin: 0; padding: 20px; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #e7dcc4; border-radius: 8px; }
.header { font-size: 22px; font-weight: bold; color: #8a6d1d; margin-bottom: 15px; }
.content { padding: 10px 20px; }
.button { display: inline-block; padding: 10px 18px; background-color: #8a6d1d; color: #ffffff; text-decoration: none; border-radius: 5px; }
.footer { margin-top: 20px; font-size: 12px; color: #6b7280; text-align: center; }
p { margin-bottom: 1em; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">%s</div>
    <div class="content">
      %s
      <p>Best regards,<br>%s</p>
    </div>
    <div class="footer">
      © %d %s. All rights reserved.
    </div>
  </div>
</body>
</html>`

type emailTemplate struct {
	subject func(v map[string]string) string
	heading func(v map[string]string) string
	lines   func(v map[string]string) []string
	// linkLabel is the call-to-action text for v["link"], if any.
	linkLabel string
}

var emailTemplates = map[TemplateKey]emailTemplate{
	TemplateSavedSearchMatch: {
		subject: func(v map[string]string) string { return "New Match for your search: " + v["search_name"] },
		heading: func(map[string]string) string { return "A new property matches your search" },
		lines: func(v map[string]string) []string {
			return []string{
				"Hello " + orDefault(v["name"], "there") + ",",
				fmt.Sprintf("Good news! A new property matches your saved search %q.", v["search_name"]),
				v["title"],
				"Price: " + v["price"],
				"Location: " + v["location"],
			}
		},
		linkLabel: "View property",
	},
	TemplatePriceDrop: {
		subject: func(v map[string]string) string { return "Price Drop Alert: " + v["title"] },
		heading: func(map[string]string) string { return "A property you saved is now cheaper" },
		lines: func(v map[string]string) []string {
			return []string{
				"Hello " + orDefault(v["name"], "there") + ",",
				"The price of " + v["title"] + " has dropped.",
				"Old Price: " + v["old_price"],
				"New Price: " + v["new_price"],
			}
		},
		linkLabel: "View property",
	},
	TemplateAppointmentReceived: {
		subject: func(v map[string]string) string { return "Appointment Request Received: " + v["title"] },
		heading: func(map[string]string) string { return "We received your viewing request" },
		lines: func(v map[string]string) []string {
			return []string{
				"Hello " + orDefault(v["name"], "there") + ",",
				"Your request to visit " + v["title"] + " has been received. We will confirm it shortly.",
				"Date: " + v["date"],
				"Time: " + v["time"],
			}
		},
	},
	TemplateAppointmentStatus: {
		subject: func(v map[string]string) string {
			return "Appointment " + titleCase(v["status"]) + ": " + v["title"]
		},
		heading: func(v map[string]string) string { return "Your appointment is " + strings.ToLower(v["status"]) },
		lines: func(v map[string]string) []string {
			return []string{
				"Hello " + orDefault(v["name"], "there") + ",",
				"Your appointment to visit " + v["title"] + " is now " + strings.ToLower(v["status"]) + ".",
				"Date: " + v["date"],
				"Time: " + v["time"],
			}
		},
	},
	TemplateInquiryAutoReply: {
		subject: func(map[string]string) string { return "We received your inquiry" },
		heading: func(map[string]string) string { return "Thank you for contacting " + utils.OrganizationName },
		lines: func(v map[string]string) []string {
			return []string{
				"Hello " + orDefault(v["name"], "there") + ",",
				"Thank you for reaching out. A member of our team will get back to you shortly.",
				"Your message: " + v["message"],
			}
		},
	},
	TemplateAdminNewLead: {
		subject: func(v map[string]string) string {
			return "New " + orDefault(v["kind"], "lead") + " from " + orDefault(v["name"], "a visitor")
		},
		heading: func(map[string]string) string { return "New lead" },
		lines: func(v map[string]string) []string {
			return []string{
				"Name: " + v["name"],
				"Email: " + v["email"],
				"Phone: " + v["phone"],
				"Property: " + v["property"],
				"Message: " + v["message"],
			}
		},
		linkLabel: "Open admin panel",
	},
}

// RenderEmail fills the template named key. Every value is escaped in the
// HTML part.
func RenderEmail(key TemplateKey, values map[string]string) (EmailContent, error) {
	tpl, ok := emailTemplates[key]
	if !ok {
		return EmailContent{}, fmt.Errorf("unknown email template %q", key)
	}
	if values == nil {
		values = map[string]string{}
	}

	lines := tpl.lines(values)
	link := values["link"]

	var plain, body strings.Builder
	for _, l := range lines {
		plain.WriteString(l)
		plain.WriteString("\n")
		body.WriteString("<p>")
		body.WriteString(html.EscapeString(l))
		body.WriteString("</p>\n")
	}
	if link != "" && tpl.linkLabel != "" {
		fmt.Fprintf(&plain, "%s: %s\n", tpl.linkLabel, link)
		fmt.Fprintf(&body, `<p><a class="button" href="%s">%s</a></p>`+"\n",
			html.EscapeString(link), html.EscapeString(tpl.linkLabel))
	}
	plain.WriteString("\nBest regards,\n" + emailSignature + "\n")

	return EmailContent{
		Subject: tpl.subject(values),
		Plain:   plain.String(),
		HTML: fmt.Sprintf(emailLayoutHTML,
			html.EscapeString(tpl.heading(values)),
			body.String(),
			emailSignature,
			time.Now().Year(),
			utils.OrganizationName,
		),
	}, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// rupees renders a parsed price for display.
func rupees(v int64) string {
	return "₹ " + utils.FormatPrice(v)
}
