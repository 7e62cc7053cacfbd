package templates

import (
	"fmt"
	"html"
)

// ReminderItem is one expiring record rendered in a reminder email.
type ReminderItem struct {
	Category string
	Label    string
	Expiry   string
	DaysLeft int
}

// RenderExpiryReminderEmail generates the HTML for the daily expiry reminder
// email, listing every record of the owner's that falls inside the notice
// window.
func RenderExpiryReminderEmail(name string, items []ReminderItem, dashboardURL string) string {
	rows := ""
	for _, item := range items {
		urgency := "#1e7a46"
		if item.DaysLeft <= 7 {
			urgency = "#b91c1c"
		}
		rows += fmt.Sprintf(`
        <tr>
          <td style="padding: 12px 10px; border-bottom: 1px solid #e5e7eb;">%s</td>
          <td style="padding: 12px 10px; border-bottom: 1px solid #e5e7eb;">%s</td>
          <td style="padding: 12px 10px; border-bottom: 1px solid #e5e7eb;">%s</td>
          <td style="padding: 12px 10px; border-bottom: 1px solid #e5e7eb; color: %s; font-weight: 700;">%d days</td>
        </tr>`,
			html.EscapeString(item.Category),
			html.EscapeString(item.Label),
			html.EscapeString(item.Expiry),
			urgency,
			item.DaysLeft,
		)
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>Licenses Expiring Soon - RemLic</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f6f8; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #1e7a46 0%%, #155330 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .content table { width: 100%%; border-collapse: collapse; font-size: 14px; }
    .content th { text-align: left; padding: 10px; background: #f0fdf4; color: #155330; }
    .cta-button { display: inline-block; background: linear-gradient(135deg, #1e7a46 0%%, #155330 100%%); color: #fff; padding: 14px 28px; border-radius: 8px; text-decoration: none; font-weight: 700; margin-top: 20px; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid rgba(0,0,0,0.1); }
    .footer a { color: #1e7a46; text-decoration: none; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Licenses Expiring Soon</h1>
    </div>
    <div class="content">
      <h2>Hi %s,</h2>
      <p>The following documents on your RemLic dashboard are due for renewal:</p>
      <table>
        <tr>
          <th>Category</th>
          <th>Document</th>
          <th>Expires</th>
          <th>Time left</th>
        </tr>%s
      </table>
      <p>Renew them on your dashboard to avoid penalties or lapsed cover.</p>
      <a href="%s" class="cta-button">Open Dashboard</a>
    </div>
    <div class="footer">
      <p>&copy; RemLic | <a href="https://www.remlic.co.za">remlic.co.za</a></p>
      <p>You can pause reminders per document from your dashboard.</p>
    </div>
  </div>
</body>
</html>`, html.EscapeString(name), rows, dashboardURL)
}
