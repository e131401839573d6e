package domain

import "time"

// Counter groups accepted by the analytics endpoints.
const (
	AnalyticsCredentials = "credentials"
	AnalyticsClicks      = "clicks"
	AnalyticsEvidence    = "evidence"
)

// UserAnalytics holds per-user usage counters. PK: email.
type UserAnalytics struct {
	Email                   string                  `json:"email"`
	CredentialsIssued       CredentialsIssued       `json:"credentialsIssued"`
	ClickRates              ClickRates              `json:"clickRates"`
	EvidenceAttachmentRates EvidenceAttachmentRates `json:"evidenceAttachmentRates"`
	LastActivity            time.Time               `json:"lastActivity"`
}

type CredentialsIssued struct {
	Skill             int `json:"skill"`
	Employment        int `json:"employment"`
	PerformanceReview int `json:"performanceReview"`
	Volunteer         int `json:"volunteer"`
	IDVerification    int `json:"idVerification"`
}

type ClickRates struct {
	RequestRecommendation int `json:"requestRecommendation"`
	ShareCredential       int `json:"shareCredential"`
}

type EvidenceAttachmentRates struct {
	SkillVCs           int `json:"skillVCs"`
	EmploymentVCs      int `json:"employmentVCs"`
	VolunteerVCs       int `json:"volunteerVCs"`
	PerformanceReviews int `json:"performanceReviews"`
}

// AnalyticsCounters lists the valid counter names per group.
var AnalyticsCounters = map[string][]string{
	AnalyticsCredentials: {"skill", "employment", "performanceReview", "volunteer", "idVerification"},
	AnalyticsClicks:      {"requestRecommendation", "shareCredential"},
	AnalyticsEvidence:    {"skillVCs", "employmentVCs", "volunteerVCs", "performanceReviews"},
}

// ValidCounter reports whether name is a known counter of group.
func ValidCounter(group, name string) bool {
	for _, c := range AnalyticsCounters[group] {
		if c == name {
			return true
		}
	}
	return false
}

// SetCounterRequest is the body of PUT /v1/analytics/{group}/{type}.
type SetCounterRequest struct {
	Value *int `json:"value" validate:"required,min=0"`
}
