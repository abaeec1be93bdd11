package kdforest

import "fmt"

// ContractError reports a programmer/contract violation: an unsupported
// element type or metric, an out-of-range argument, or misuse of the
// forest/searcher lifetime. Per the package's failure semantics, contract
// violations panic with a *ContractError rather than returning one; it is
// exported only so a caller that chooses to recover() can inspect it.
type ContractError struct {
	Op      string
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("kdforest: %s: %s", e.Op, e.Message)
}

func contractViolation(op, format string, args ...any) {
	panic(&ContractError{Op: op, Message: fmt.Sprintf(format, args...)})
}
