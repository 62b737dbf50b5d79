package core

import "time"

const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	TimestampLayout = "2006-01-02 15:04:05"
)

// MinKeyLength is the shortest normalized key we accept as a real
// recognition; OCR noise below this is reported as "no plate detected".
const MinKeyLength = 3

type EventKind string

const (
	KindPlate      EventKind = "plate"
	KindCredential EventKind = "credential"
)

// RecognitionEvent is one recognized plate or credential tap, immutable
// once built.
type RecognitionEvent struct {
	ID            string
	Kind          EventKind
	RawKey        string
	NormalizedKey string
	OccurredAt    time.Time
	Confidence    float64
}

// Identity is a registered person as stored remotely. The core only
// reads identities, it never writes them.
type Identity struct {
	IdentityID   string `json:"identityId"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Plate        string `json:"plate,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
}

const (
	StatusCheckedIn  = "Checked In"
	StatusComplete   = "Complete"
	StatusIncomplete = "Incomplete"

	Punctual = "Punctual"
	Late     = "Late"
)

// AttendanceRecord is the per-identity, per-day ledger entry kept at
// attendance/{date}/{identityId}. Created on the first admitted event of
// the day; every later event overwrites the checkout fields.
type AttendanceRecord struct {
	IdentityID     string `json:"identityId"`
	Name           string `json:"name"`
	Department     string `json:"department"`
	Plate          string `json:"plate,omitempty"`
	Date           string `json:"date"`
	Checkin        string `json:"checkin"`
	CheckinMethod  string `json:"checkinMethod"`
	CheckinValue   string `json:"checkinValue"`
	Shift          string `json:"shift"`
	Punctuality    string `json:"punctuality"`
	Checkout       string `json:"checkout,omitempty"`
	CheckoutMethod string `json:"checkoutMethod,omitempty"`
	CheckoutValue  string `json:"checkoutValue,omitempty"`
	Status         string `json:"status"`
	WorkedHours    string `json:"workedHours"`
	Timestamp      string `json:"timestamp"`
}

// LatestEvent is the single "latest event" pointer per method, overwritten
// unconditionally on every successful ledger write. Informational only.
type LatestEvent struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Timestamp  string `json:"timestamp"`
	Method     string `json:"method"`
	Plate      string `json:"plate,omitempty"`
	Credential string `json:"credential,omitempty"`
	Registered bool   `json:"registered"`
}

type Outcome string

const (
	OutcomeNoKey        Outcome = "no_plate_detected"
	OutcomeRejected     Outcome = "rejected_duplicate"
	OutcomeUnregistered Outcome = "unregistered"
	OutcomeCheckedIn    Outcome = "checked_in"
	OutcomeCheckedOut   Outcome = "checked_out"
)

// ProcessResult is what one recognition event produced, returned to the
// API caller and kept as the service's last result.
type ProcessResult struct {
	Outcome     Outcome           `json:"outcome"`
	Kind        EventKind         `json:"kind"`
	Key         string            `json:"key"`
	Time        string            `json:"time"`
	Registered  bool              `json:"registered"`
	Identity    *Identity         `json:"identity,omitempty"`
	Record      *AttendanceRecord `json:"record,omitempty"`
	RejectCount uint64            `json:"rejectCount,omitempty"`
	WaitSeconds float64           `json:"waitSeconds,omitempty"`
	ArchivedKey string            `json:"archivedKey,omitempty"`
}

// EventLogEntry is the audit-trail row for one processed event,
// whatever its outcome.
type EventLogEntry struct {
	EventID       string
	Kind          EventKind
	RawKey        string
	NormalizedKey string
	Outcome       Outcome
	IdentityID    string
	Name          string
	OccurredAt    time.Time
	Confidence    float64
}
