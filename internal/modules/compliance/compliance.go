// Package compliance lints marketing labels and workforce plans against
// German and EU retail regulation ahead of market entry.
package compliance

import (
	"fmt"
	"regexp"
	"strings"
)

// Finding severities and statuses.
const (
	SeverityNone   = "NONE"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"

	StatusPass      = "PASS"
	StatusViolation = "VIOLATION"
	StatusAlert     = "ALERT"
)

// Workforce alert codes.
const (
	AlertWorksCouncil = "WORKS_COUNCIL_ALERT"
	AlertGDPR         = "GDPR_BETRIEBSRAT_VIOLATION"
)

// Generic environmental claims are banned under EmpCo from September 2026
// unless substantiated by a verifiable certification ID.
var bannedGreenTerms = []string{"climate neutral", "eco-friendly", "green"}

var isoCertPattern = regexp.MustCompile(`(?i)\bISO\s?\d{3,5}(?:-\d+)?\b`)

const greenClaimsRule = "EmpCo Generic Green Claims Ban (effective Sept 27, 2026)"

// minShiftNoticeDays is the works-council consultation floor for schedule changes.
const minShiftNoticeDays = 4

// monitoringTypeIndividual triggers the GDPR/Betriebsrat co-determination rule.
const monitoringTypeIndividual = "individual_performance_tracking"

// GreenClaimFinding is one audited product label.
type GreenClaimFinding struct {
	Label       string `json:"label"`
	Status      string `json:"status"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Reason      string `json:"reason"`
	Remediation string `json:"remediation"`
}

// ShiftPlanRecord is one workforce scheduling or monitoring entry under audit.
type ShiftPlanRecord struct {
	Warehouse        string `json:"warehouse,omitempty"`
	NoticePeriodDays int    `json:"notice_period_days"`
	MonitoringType   string `json:"monitoring_type,omitempty"`
}

// WorkforceFinding is the audit outcome for one shift plan record.
type WorkforceFinding struct {
	Record      ShiftPlanRecord `json:"record"`
	Status      string          `json:"status"`
	Severity    string          `json:"severity"`
	Alerts      []string        `json:"alerts"`
	Remediation string          `json:"remediation"`
}

// RiskSummary aggregates compliance findings into board-level counts.
type RiskSummary struct {
	GreenClaimViolations int `json:"green_claim_violations"`
	WorkforceAlerts      int `json:"workforce_alerts"`
	HighSeverityFindings int `json:"high_severity_findings"`
	TotalFindings        int `json:"total_findings"`
}

// AuditGreenClaims flags generic green claims on product labels unless a
// verifiable ISO certification ID appears in the same label.
func AuditGreenClaims(labels []string) []GreenClaimFinding {
	findings := make([]GreenClaimFinding, 0, len(labels))
	for _, label := range labels {
		lowered := strings.ToLower(label)
		var matched []string
		for _, term := range bannedGreenTerms {
			if strings.Contains(lowered, term) {
				matched = append(matched, term)
			}
		}

		if len(matched) > 0 && !isoCertPattern.MatchString(label) {
			findings = append(findings, GreenClaimFinding{
				Label:       label,
				Status:      StatusViolation,
				Severity:    SeverityHigh,
				Rule:        greenClaimsRule,
				Reason:      fmt.Sprintf("Generic claim(s) %v without verified ISO certification ID.", matched),
				Remediation: "Attach verifiable certification ID or remove generic claim language.",
			})
			continue
		}
		findings = append(findings, GreenClaimFinding{
			Label:       label,
			Status:      StatusPass,
			Severity:    SeverityNone,
			Rule:        "EmpCo Generic Green Claims Ban",
			Reason:      "No banned generic claim or claim substantiated by ISO ID.",
			Remediation: "None required.",
		})
	}
	return findings
}

// CheckWorkforceScheduling audits shift plan records for works-council and
// GDPR/Betriebsrat risks. Notice periods under the consultation floor raise a
// medium alert; individual performance tracking is a high-severity violation.
func CheckWorkforceScheduling(records []ShiftPlanRecord) []WorkforceFinding {
	findings := make([]WorkforceFinding, 0, len(records))
	for _, record := range records {
		var alerts []string
		severity := SeverityNone

		if record.NoticePeriodDays < minShiftNoticeDays {
			alerts = append(alerts, AlertWorksCouncil)
			severity = SeverityMedium
		}
		if strings.EqualFold(strings.TrimSpace(record.MonitoringType), monitoringTypeIndividual) {
			alerts = append(alerts, AlertGDPR)
			severity = SeverityHigh
		}

		status := StatusPass
		remediation := "None required."
		if len(alerts) > 0 {
			status = StatusAlert
			remediation = "Increase notice period to >= 4 days and switch to aggregate/non-identifiable KPIs."
		}
		findings = append(findings, WorkforceFinding{
			Record:      record,
			Status:      status,
			Severity:    severity,
			Alerts:      alerts,
			Remediation: remediation,
		})
	}
	return findings
}

// SummarizeRisk rolls both audits into the counts the board report carries.
func SummarizeRisk(greenClaims []GreenClaimFinding, workforce []WorkforceFinding) RiskSummary {
	var summary RiskSummary
	for _, f := range greenClaims {
		if f.Status == StatusViolation {
			summary.GreenClaimViolations++
		}
		if f.Severity == SeverityHigh {
			summary.HighSeverityFindings++
		}
	}
	for _, f := range workforce {
		if f.Status == StatusAlert {
			summary.WorkforceAlerts++
		}
		if f.Severity == SeverityHigh {
			summary.HighSeverityFindings++
		}
	}
	summary.TotalFindings = summary.GreenClaimViolations + summary.WorkforceAlerts
	return summary
}
