package errs

import (
	"fmt"
	"sync"

	radix "github.com/armon/go-radix"
)

type syscallCategory struct{}

func (syscallCategory) Name() string { return "syscall" }
func (syscallCategory) Information(code int) string {
	return fmt.Sprintf("syscall[error] errno: %d", code)
}

type boostCategory struct{}

func (boostCategory) Name() string { return "boost" }
func (boostCategory) Information(code int) string {
	return fmt.Sprintf("boost[error] ec: %d", code)
}

// GeneralCategory is a named category; instances are canonicalized by name.
type GeneralCategory struct {
	name string
}

func (c *GeneralCategory) Name() string { return c.name }
func (c *GeneralCategory) Information(code int) string {
	return fmt.Sprintf("%s[error] ec: %d", c.name, code)
}

var (
	syscallCat syscallCategory
	boostCat   boostCategory

	generalMu   sync.Mutex
	generalCats = radix.New()
)

func SyscallCategory() Category { return &syscallCat }
func BoostCategory() Category   { return &boostCat }

// General returns the canonical category for the given name. Two calls
// with the same name yield the same pointer.
func General(name string) Category {
	generalMu.Lock()
	defer generalMu.Unlock()
	if c, ok := generalCats.Get(name); ok {
		return c.(*GeneralCategory)
	}
	c := &GeneralCategory{name: name}
	generalCats.Insert(name, c)
	return c
}
