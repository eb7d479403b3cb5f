package jobs

type JobType string

const (
	JobSendVerificationEmail JobType = "send_verification_email"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobSendVerificationEmail:
		return true
	default:
		return false
	}
}
