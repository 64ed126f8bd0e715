package mailer

import (
	"bytes"
	"fmt"
	html "html/template"
	text "text/template"
)

const verifySubject = "Verify your email address"

const verifyText = `Hi {{.Name}},

Please verify your email address for {{.Company}} by opening the link below:

{{.Link}}

The link expires in {{.ExpiresHours}} hours. If you did not create this
account you can ignore this message.
`

const verifyHTML = `<html><body>
<p>Hi {{.Name}},</p>
<p>Please verify your email address for {{.Company}} by clicking the link below:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>The link expires in {{.ExpiresHours}} hours. If you did not create this
account you can ignore this message.</p>
</body></html>`

var (
	verifyTextTpl = text.Must(text.New("verify_text").Parse(verifyText))
	verifyHTMLTpl = html.Must(html.New("verify_html").Parse(verifyHTML))
)

// Render produces subject/text/html for a named template.
func Render(template string, data map[string]any) (string, string, string, error) {
	switch template {
	case "verify_email":
		var tb, hb bytes.Buffer
		if err := verifyTextTpl.Execute(&tb, data); err != nil {
			return "", "", "", err
		}
		if err := verifyHTMLTpl.Execute(&hb, data); err != nil {
			return "", "", "", err
		}
		return verifySubject, tb.String(), hb.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", template)
	}
}
