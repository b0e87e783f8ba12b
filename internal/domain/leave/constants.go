package leave

const (
	TypeAnnual    = "Annual"
	TypeSick      = "Sick"
	TypeUnpaid    = "Unpaid"
	TypeEmergency = "Emergency"
	TypeMaternity = "Maternity"
	TypePaternity = "Paternity"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// MaxReasonLength bounds the free-text reason on a request.
const MaxReasonLength = 500

var Types = []string{TypeAnnual, TypeSick, TypeUnpaid, TypeEmergency, TypeMaternity, TypePaternity}
