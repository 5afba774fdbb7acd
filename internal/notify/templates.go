package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222;max-width:600px;margin:auto">
<h2 style="border-bottom:1px solid #eee;padding-bottom:8px">{{.Store}}</h2>
{{template "body" .}}
<p style="color:#888;font-size:12px;margin-top:24px">This is an automated message from {{.Store}}.</p>
</body></html>{{end}}`

var bodies = map[string]string{
	"order": `{{define "body"}}
<p>Hi {{.Data.ShippingAddress.FullName}},</p>
<p>Thank you for your order. We have received it and will let you know when it ships.</p>
<p><strong>Order:</strong> {{.Data.ID.Hex}}<br>
<strong>Payment:</strong> {{.PaymentLabel}}</p>
<table style="width:100%;border-collapse:collapse">
<tr><th align="left">Item</th><th>Size</th><th>Qty</th><th align="right">Price</th></tr>
{{range .Data.Items}}<tr><td>{{.Name}}</td><td align="center">{{.Size}}</td><td align="center">{{.Quantity}}</td><td align="right">{{money .Price}}</td></tr>
{{end}}</table>
<p>Subtotal: {{money .Data.Subtotal}}<br>
Shipping: {{money .Data.Shipping}}<br>
Tax: {{money .Data.Tax}}<br>
<strong>Total: {{money .Data.Total}}</strong></p>
<p>Shipping to:<br>{{with .Data.ShippingAddress}}{{.Street}}, {{.City}} {{.State}} {{.ZipCode}}<br>{{.Country}}<br>Phone: {{.Phone}}{{end}}</p>
{{end}}`,

	"payment": `{{define "body"}}
<p>Hi {{if .Data.Name}}{{.Data.Name}}{{else}}there{{end}},</p>
<p>We received your payment{{if .Data.Amount}} of <strong>{{money .Data.Amount}}</strong>{{end}}.</p>
<p><strong>Payment ID:</strong> {{.Data.PaymentID}}<br>
<strong>Order reference:</strong> {{.Data.OrderID}}</p>
{{end}}`,

	"otp": `{{define "body"}}
<p>Your verification code is</p>
<p style="font-size:28px;letter-spacing:6px"><strong>{{.Data.Code}}</strong></p>
<p>It expires in {{.Data.Minutes}} minutes. If you did not request it you can ignore this email.</p>
{{end}}`,

	"contact": `{{define "body"}}
<p>New contact message from <strong>{{.Data.Name}}</strong> &lt;{{.Data.Email}}&gt;</p>
{{if .Data.Subject}}<p><strong>Subject:</strong> {{.Data.Subject}}</p>{{end}}
<p style="white-space:pre-wrap">{{.Data.Message}}</p>
{{end}}`,

	"contact_ack": `{{define "body"}}
<p>Hi {{.Data.Name}},</p>
<p>Thanks for reaching out. We got your message and will reply within two business days.</p>
<blockquote style="color:#555;white-space:pre-wrap">{{.Data.Message}}</blockquote>
{{end}}`,

	"feedback": `{{define "body"}}
<p>New feedback from <strong>{{.Data.Name}}</strong> &lt;{{.Data.Email}}&gt;</p>
{{if .Data.Rating}}<p><strong>Rating:</strong> {{.Data.Rating}}/5</p>{{end}}
<p style="white-space:pre-wrap">{{.Data.Message}}</p>
{{end}}`,

	"feedback_ack": `{{define "body"}}
<p>Hi {{.Data.Name}},</p>
<p>Thank you for your feedback. It helps us improve.</p>
{{end}}`,
}

var templates = parseTemplates()

func parseTemplates() map[string]*template.Template {
	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	}
	out := make(map[string]*template.Template, len(bodies))
	for name, body := range bodies {
		t := template.Must(template.New(name).Funcs(funcs).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}

type view struct {
	Store        string
	PaymentLabel string
	Data         any
}

func render(name string, v view) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
