package tiercache

import "fmt"

// UnknownDomainError is the panic value raised when an operation names a
// domain that was never registered in the strategy table. An unknown domain
// is a programming error in a collaborator, not a runtime condition, so it
// fails loud instead of degrading like a remote-tier fault would.
type UnknownDomainError struct {
	Domain Domain
}

func (e *UnknownDomainError) Error() string {
	return fmt.Sprintf("tiercache: unknown domain %q (not in strategy table)", string(e.Domain))
}
