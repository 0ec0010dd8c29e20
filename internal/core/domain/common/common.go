package common

import (
	"fmt"
	"strings"
)

type Optional[T any] struct {
	Value     T
	IsPresent bool
}

func (p *Optional[T]) String() string {
	if !p.IsPresent {
		return "[-]"
	}
	return fmt.Sprintf("[%v]", p.Value)
}

func NewOptional[T any](value T, isPresent bool) Optional[T] {
	return Optional[T]{Value: value, IsPresent: isPresent}
}

// Email is compared byte by byte, as stored. No case folding is applied.
type Email string

func (e Email) IsValid() bool {
	local, domain, ok := strings.Cut(string(e), "@")
	return ok && local != "" && domain != ""
}
