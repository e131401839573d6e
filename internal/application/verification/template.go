package verification

import (
	"bytes"
	"html/template"
	"time"
)

const emailSubject = "Your Email Verification Code"

const defaultPurpose = "account verification"

var emailTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1f2937;">
    <h1>Email Verification</h1>
    <p>Use this code to complete your {{.Purpose}} with {{.AppName}}.</p>
    <p>Your verification code is: <strong style="font-size: 20px; letter-spacing: 4px;">{{.Code}}</strong></p>
    <p>This code will expire in {{.Minutes}} minutes.</p>
    <p>If you did not request this code you can ignore this email.</p>
  </body>
</html>
`))

type emailData struct {
	AppName string
	Purpose string
	Code    string
	Minutes int
}

func renderEmail(appName, purpose, code string, ttl time.Duration) (string, error) {
	if purpose == "" {
		purpose = defaultPurpose
	}
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, emailData{
		AppName: appName,
		Purpose: purpose,
		Code:    code,
		Minutes: int(ttl.Round(time.Minute) / time.Minute),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
