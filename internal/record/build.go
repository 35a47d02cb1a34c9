package record

import "github.com/nao1215/contactscan/internal/model"

// Build assembles the candidate-log row for one verified candidate.
func Build(identity model.Identity, candidate model.CandidateEmail, verification model.VerificationResult) model.Record {
	return model.Record{
		Handle:      identity.Handle,
		DisplayName: identity.DisplayName,
		ExternalURL: identity.ExternalURL,
		OriginURL:   candidate.OriginURL,
		Email:       candidate.Address,
		Tier:        candidate.Tier,
		MXExists:    verification.MXExists,
		SMTPStatus:  verification.SMTPStatus,
		SMTPNote:    verification.SMTPNote,
	}
}

// ErrorRecord builds the placeholder written for a handle whose profile
// could not be acquired. kind names the failure, e.g. "NotFound".
func ErrorRecord(handle, kind string) model.Record {
	return model.Record{
		Handle:     handle,
		Tier:       model.TierError,
		SMTPStatus: model.SMTPUnchecked,
		SMTPNote:   model.ProfileErrorPrefix + kind,
	}
}

// BuildAll builds one record per candidate, in candidate order.
// verifications must be index-aligned with candidates.
func BuildAll(identity model.Identity, candidates []model.CandidateEmail, verifications []model.VerificationResult) []model.Record {
	records := make([]model.Record, 0, len(candidates))
	for i, c := range candidates {
		v := model.Unverified()
		if i < len(verifications) {
			v = verifications[i]
		}
		records = append(records, Build(identity, c, v))
	}
	return records
}
