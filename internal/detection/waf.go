package detection

import (
	"net/http"
	"strings"
)

type WAFSignature struct {
	Name          string
	ServerHeader  string
	CustomHeader  string
	CookiePattern string
}

var WAFSignatures = []WAFSignature{
	{
		Name:          "Cloudflare",
		ServerHeader:  "cloudflare",
		CookiePattern: "__cfduid",
	},
	{
		Name:         "AWS WAF",
		CustomHeader: "X-Amz-Cf-Id",
	},
	{
		Name:         "Akamai",
		ServerHeader: "AkamaiGHost",
	},
	{
		Name:         "Imperva",
		CustomHeader: "X-Iinfo",
	},
	{
		Name:          "F5 BigIP",
		CookiePattern: "BIGipServer",
	},
	{
		Name:         "Sucuri",
		ServerHeader: "Sucuri",
	},
	{
		Name:         "Barracuda",
		ServerHeader: "Barracuda",
	},
	{
		Name:         "ModSecurity",
		ServerHeader: "Mod_Security",
	},
	{
		Name:          "Fortinet FortiWeb",
		CookiePattern: "FORTIWAFSID",
	},
	{
		Name:         "Fastly",
		CustomHeader: "X-Fastly-Request-ID",
	},
	{
		Name:         "Varnish",
		CustomHeader: "X-Varnish",
	},
}

// DetectWAF names the WAF or CDN fronting a response, judging by its headers
// and cookies. It works on HEAD responses.
func DetectWAF(header http.Header) string {
	if len(header) == 0 {
		return ""
	}

	server := strings.ToLower(header.Get("Server"))
	cookies := (&http.Response{Header: header}).Cookies()

	for _, waf := range WAFSignatures {
		if waf.ServerHeader != "" && strings.Contains(server, strings.ToLower(waf.ServerHeader)) {
			return waf.Name
		}

		if waf.CustomHeader != "" {
			for name := range header {
				if strings.EqualFold(name, waf.CustomHeader) {
					return waf.Name
				}
			}
		}

		if waf.CookiePattern != "" {
			for _, cookie := range cookies {
				if strings.Contains(cookie.Name, waf.CookiePattern) {
					return waf.Name
				}
			}
		}
	}

	return ""
}

var bodyPatterns = []struct {
	pattern string
	name    string
}{
	{"sorry, you have been blocked", "Cloudflare"},
	{"<title>attention required", "Cloudflare"},
	{"<title>just a moment", "Cloudflare"},
	{"powered by wordfence", "Wordfence"},
	{"modsecurity", "ModSecurity"},
	{"request blocked", "Generic WAF"},
	{"this request has been blocked", "Generic WAF"},
	{"web application firewall", "Generic WAF"},
}

// DetectWAFFromBody recognises common block pages.
func DetectWAFFromBody(body string) string {
	lowerBody := strings.ToLower(body)
	for _, p := range bodyPatterns {
		if strings.Contains(lowerBody, p.pattern) {
			return p.name
		}
	}
	return ""
}
