package model

import (
	"strconv"
	"strings"
)

// RecordColumns is the column order of the candidate and reduced logs.
var RecordColumns = []string{
	"handle",
	"display_name",
	"external_url",
	"email",
	"source_tier",
	"mx_exists",
	"smtp_status",
	"smtp_note",
	"origin_url",
}

// Record is one row of the candidate log: an identity joined with a
// candidate email and its verification.
type Record struct {
	Handle      string     `json:"handle"`
	DisplayName string     `json:"displayName"`
	ExternalURL string     `json:"externalUrl"`
	OriginURL   string     `json:"originUrl"`
	Email       string     `json:"email"`
	Tier        SourceTier `json:"sourceTier"`
	MXExists    bool       `json:"mxExists"`
	SMTPStatus  SMTPStatus `json:"smtpStatus"`
	SMTPNote    string     `json:"smtpNote"`
}

// IsErrorPlaceholder reports whether r stands for an acquisition failure
// rather than a discovered address.
func (r Record) IsErrorPlaceholder() bool {
	return r.Tier == TierError || strings.Contains(r.SMTPNote, "profile_error")
}

// Row returns the record's fields in RecordColumns order.
func (r Record) Row() []string {
	return []string{
		r.Handle,
		r.DisplayName,
		r.ExternalURL,
		r.Email,
		r.Tier.String(),
		strconv.FormatBool(r.MXExists),
		r.SMTPStatus.String(),
		r.SMTPNote,
		r.OriginURL,
	}
}
