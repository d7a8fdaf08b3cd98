// Package certsvc renders self-contained HTML achievement certificates.
//
// Generate is a pure function of its inputs: no I/O, no clock, no storage.
// Certificate IDs are derived deterministically so the same attempt always
// yields the same verifiable code.
package certsvc

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"html/template"
	"strings"
)

// Data is everything the certificate document displays.
type Data struct {
	Name        string
	Score       string // percentage text, without the % sign
	Date        string
	CertID      string
	CompanyName string
}

// NewID derives the short verification code for a certificate from its
// display inputs.
func NewID(name, score, date string) string {
	sum := md5.Sum([]byte(name + "_" + score + "_" + date))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}

// Generate renders the certificate document. An empty Data.CertID is filled
// in with the derived code.
func Generate(data Data) (string, error) {
	if data.CertID == "" {
		data.CertID = NewID(data.Name, data.Score, data.Date)
	}

	var buff bytes.Buffer
	if err := certTemplate.Execute(&buff, data); err != nil {
		return "", err
	}
	return buff.String(), nil
}

var certTemplate = template.Must(template.New("certificate").Parse(certTemplateText))

const certTemplateText = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Operator Certificate</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Montserrat', sans-serif;
            background-color: #f5f5f5;
            color: #333;
            padding: 20px;
        }
        .certificate-container {
            width: 850px;
            position: relative;
            margin: 0 auto;
            background-color: #fff;
            overflow: hidden;
        }
        .certificate {
            border: 20px solid transparent;
            border-image: linear-gradient(45deg, #1E88E5, #0D47A1) 1;
            padding: 40px;
            position: relative;
            background-color: #fff;
        }
        .header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 30px;
            padding-bottom: 20px;
            border-bottom: 1px solid #eaeaea;
        }
        .certificate-id {
            font-size: 14px;
            color: #888;
            text-align: right;
        }
        .certificate-title { text-align: center; margin: 20px 0 40px; }
        .certificate-heading {
            font-family: 'Playfair Display', serif;
            font-size: 48px;
            color: #1E88E5;
            margin-bottom: 10px;
            text-transform: uppercase;
            letter-spacing: 2px;
        }
        .certificate-subheading { font-size: 22px; color: #555; font-weight: 600; }
        .recipient-section { text-align: center; margin: 40px 0; }
        .presented-to { font-size: 16px; color: #666; margin-bottom: 15px; }
        .recipient-name {
            font-family: 'Playfair Display', serif;
            font-size: 36px;
            color: #333;
            display: inline-block;
            padding: 0 20px 10px;
            border-bottom: 1px solid #1E88E5;
        }
        .achievement {
            margin: 40px 0;
            text-align: center;
            font-size: 18px;
            line-height: 1.6;
            color: #555;
        }
        .score {
            font-weight: 700;
            color: #1E88E5;
            font-size: 26px;
            margin: 10px 0;
            display: block;
        }
        .date-section { text-align: center; margin: 30px 0; font-size: 16px; color: #666; }
        .date { font-weight: 600; color: #333; }
        .signature-section { display: flex; justify-content: space-between; margin-top: 60px; }
        .signature { text-align: center; width: 45%; }
        .signature-line { width: 80%; height: 1px; background-color: #333; margin: 10px auto; }
        .signature-name { font-weight: 600; font-size: 16px; }
        .signature-title { font-size: 14px; color: #666; }
        .footer {
            margin-top: 40px;
            font-size: 12px;
            color: #888;
            text-align: center;
            padding-top: 20px;
            border-top: 1px solid #eaeaea;
        }
        .validity { margin-top: 10px; font-style: italic; }
        .verification { margin-top: 5px; font-weight: 600; }
        @media print {
            body { background-color: white; padding: 0; }
            .certificate-container { width: 100%; box-shadow: none; }
        }
    </style>
</head>
<body>
    <div class="certificate-container">
        <div class="certificate">
            <div class="header">
                <div>{{.CompanyName}}</div>
                <div class="certificate-id">
                    Certificate ID: {{.CertID}}<br>
                    Issue Date: {{.Date}}
                </div>
            </div>

            <div class="certificate-title">
                <h1 class="certificate-heading">Certificate</h1>
                <h2 class="certificate-subheading">of Achievement</h2>
            </div>

            <div class="recipient-section">
                <p class="presented-to">This certifies that</p>
                <h3 class="recipient-name">{{.Name}}</h3>
            </div>

            <div class="achievement">
                has successfully completed the<br>
                <strong>Operator Safety Training</strong><br>
                demonstrating proficiency in safety protocols and operational procedures<br>
                with a score of<br>
                <span class="score">{{.Score}}%</span>
            </div>

            <div class="date-section">
                Completed on <span class="date">{{.Date}}</span>
            </div>

            <div class="signature-section">
                <div class="signature">
                    <div class="signature-line"></div>
                    <p class="signature-name">Operations Manager</p>
                    <p class="signature-title">Certification Authority</p>
                </div>

                <div class="signature">
                    <div class="signature-line"></div>
                    <p class="signature-name">Training Director</p>
                    <p class="signature-title">Safety Department</p>
                </div>
            </div>

            <div class="footer">
                <p>This certificate validates that the recipient has demonstrated knowledge of safety procedures
                and is qualified in accordance with applicable standards.</p>
                <p class="validity">Valid for one year from the date of issue.</p>
                <p class="verification">Verify certificate authenticity with Certificate ID: {{.CertID}}</p>
            </div>
        </div>
    </div>
</body>
</html>
`
