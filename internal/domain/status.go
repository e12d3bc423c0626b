package domain

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusShipped   Status = "SHIPPED"
	StatusCancelled Status = "CANCELLED"
)

// CANCELLED and SHIPPED are terminal; there is no way back to CREATED.
var validNext = map[Status]map[Status]bool{
	StatusCreated:   {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
