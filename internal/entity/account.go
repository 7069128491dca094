package entity

// NoSession is the stored session id of an account nobody is logged in to.
const NoSession = "0"

// Field names a column of the accounts record.
type Field string

const (
	FieldStudentID    Field = "student_id"
	FieldPasswordHash Field = "password_hash"
	FieldSchedule     Field = "schedule"
	FieldSubjects     Field = "reg_subjects"
	FieldSessionID    Field = "session_id"
)

type Account struct {
	StudentID    string `json:"student_id"`
	PasswordHash string `json:"-"`
	Schedule     string `json:"schedule"`
	Subjects     string `json:"reg_subjects"`
	SessionID    string `json:"-"`
}

func (a Account) Get(field Field) (string, bool) {
	switch field {
	case FieldStudentID:
		return a.StudentID, true
	case FieldPasswordHash:
		return a.PasswordHash, true
	case FieldSchedule:
		return a.Schedule, true
	case FieldSubjects:
		return a.Subjects, true
	case FieldSessionID:
		return a.SessionID, true
	}
	return "", false
}

func (a *Account) Set(field Field, value string) bool {
	switch field {
	case FieldPasswordHash:
		a.PasswordHash = value
	case FieldSchedule:
		a.Schedule = value
	case FieldSubjects:
		a.Subjects = value
	case FieldSessionID:
		a.SessionID = value
	default:
		return false
	}
	return true
}

// SubjectInfo is one catalog row.
type SubjectInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
