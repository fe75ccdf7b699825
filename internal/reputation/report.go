// Package reputation is the boundary to the third-party fraud-scoring API
// (IPQualityScore-style JSON endpoints for URLs, email addresses, and phone
// numbers). Responses are decoded into explicit typed schemas exactly once,
// here; core logic only ever sees a RiskReport.
package reputation

// Kind selects the reputation endpoint for a target.
type Kind string

const (
	KindURL   Kind = "url"
	KindEmail Kind = "email"
	KindPhone Kind = "phone"
)

// RiskReport is the normalized verdict for one checked target.
type RiskReport struct {
	Kind   Kind
	Target string

	// Valid reports whether the target is well-formed/reachable at all,
	// independent of its risk.
	Valid bool

	// RiskScore is the provider's 0–100 fraud score.
	RiskScore int

	// Flags holds the named boolean signals of the endpoint that produced
	// the report, e.g. "disposable", "recent_abuse", "phishing", "risky".
	// Absent signals decode as false.
	Flags map[string]bool

	// Suggestion carries the provider's correction hint when there is one:
	// a likely intended mail domain, or a formatted phone number.
	Suggestion string
}

// Flag returns the named signal, false when absent.
func (r *RiskReport) Flag(name string) bool {
	return r.Flags[name]
}

// urlResponse is the wire schema of the URL-scanning endpoint.
type urlResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Unsafe     bool   `json:"unsafe"`
	RiskScore  int    `json:"risk_score"`
	Phishing   bool   `json:"phishing"`
	Malware    bool   `json:"malware"`
	Suspicious bool   `json:"suspicious"`
	Spamming   bool   `json:"spamming"`
	Parking    bool   `json:"parking"`
	DNSValid   bool   `json:"dns_valid"`
	Category   string `json:"category"`
}

// emailResponse is the wire schema of the email-validation endpoint.
type emailResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Valid           bool   `json:"valid"`
	Disposable      bool   `json:"disposable"`
	RecentAbuse     bool   `json:"recent_abuse"`
	FraudScore      int    `json:"fraud_score"`
	SpamTrapScore   string `json:"spam_trap_score"`
	Suspect         bool   `json:"suspect"`
	SuggestedDomain string `json:"suggested_domain"`
}

// phoneResponse is the wire schema of the phone-validation endpoint.
type phoneResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Valid       bool   `json:"valid"`
	FraudScore  int    `json:"fraud_score"`
	RecentAbuse bool   `json:"recent_abuse"`
	Risky       bool   `json:"risky"`
	Prepaid     bool   `json:"prepaid"`
	Active      bool   `json:"active"`
	LineType    string `json:"line_type"`
	Carrier     string `json:"carrier"`
	Country     string `json:"country"`
	Formatted   string `json:"formatted"`
}

func (r urlResponse) report(target string) *RiskReport {
	return &RiskReport{
		Kind:      KindURL,
		Target:    target,
		Valid:     r.DNSValid,
		RiskScore: r.RiskScore,
		Flags: map[string]bool{
			"unsafe":     r.Unsafe,
			"phishing":   r.Phishing,
			"malware":    r.Malware,
			"suspicious": r.Suspicious,
			"spamming":   r.Spamming,
			"parking":    r.Parking,
		},
	}
}

func (r emailResponse) report(target string) *RiskReport {
	return &RiskReport{
		Kind:      KindEmail,
		Target:    target,
		Valid:     r.Valid,
		RiskScore: r.FraudScore,
		Flags: map[string]bool{
			"disposable":   r.Disposable,
			"recent_abuse": r.RecentAbuse,
			"spam_trap":    r.SpamTrapScore == "high",
			"suspect":      r.Suspect,
		},
		Suggestion: r.SuggestedDomain,
	}
}

func (r phoneResponse) report(target string) *RiskReport {
	return &RiskReport{
		Kind:      KindPhone,
		Target:    target,
		Valid:     r.Valid,
		RiskScore: r.FraudScore,
		Flags: map[string]bool{
			"recent_abuse": r.RecentAbuse,
			"risky":        r.Risky,
			"prepaid":      r.Prepaid,
			"active":       r.Active,
		},
		Suggestion: r.Formatted,
	}
}
