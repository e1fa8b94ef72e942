package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusReserved   Status = "reserved"
	StatusPaid       Status = "paid"
	StatusFinalized  Status = "finalized"
	StatusFailed     Status = "failed"
	StatusRolledBack Status = "rolled_back"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusReserved: true, StatusFailed: true, StatusRolledBack: true},
	StatusReserved:   {StatusPaid: true, StatusFinalized: true, StatusRolledBack: true},
	StatusPaid:       {StatusFinalized: true, StatusRolledBack: true},
	StatusFinalized:  {},
	StatusFailed:     {},
	StatusRolledBack: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal statuses never change again.
func Terminal(s Status) bool {
	return len(validNext[s]) == 0
}

type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "initiated"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
)

func PaymentTerminal(s PaymentStatus) bool {
	return s == PaymentSuccess || s == PaymentFailed
}
