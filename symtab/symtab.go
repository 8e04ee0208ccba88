// Package symtab implements the compiler's symbol table: a stack of
// lexically nested scopes, each tracking the entities declared in it and
// the activation-record offset cursor used to lay out its frame.
package symtab

import (
	"fmt"
	"strings"

	"github.com/skx/cimple/cerrors"
)

// Category is the kind of entity a name is bound to.
type Category string

// The fixed set of entity categories.
const (
	Variable     Category = "variable"
	Parameter    Category = "parameter"
	TmpVariable  Category = "tmp_variable"
	Function     Category = "function"
	Procedure    Category = "procedure"
)

// storageCategories are the categories that occupy a frame slot.
var storageCategories = map[Category]bool{
	Variable:    true,
	Parameter:   true,
	TmpVariable: true,
}

// Mode is the parameter-passing mode of a Parameter entity.
type Mode string

// The two parameter-passing modes.
const (
	ModeIn    Mode = "in"
	ModeInout Mode = "inout"
)

// Entity is every name bound in a scope.
type Entity struct {
	Name     string
	Category Category
	Scope    int // index into the scope stack at definition time

	// Variable / Parameter / TmpVariable only.
	Offset int

	// Parameter only.
	Mode Mode

	// Function / Procedure only.
	StartQuad   string
	Signature   []Mode
	FrameLength int
}

// BaseOffset is the first activation-record slot available to a declared
// entity: the saved return address, caller's stack pointer and
// return-value pointer each take one 4-byte slot ahead of it.
const BaseOffset = 12

// SlotSize is the size in bytes of a single stack/frame slot.
const SlotSize = 4

// Scope is a single lexical scope: a named record of five categorized
// name->entity maps plus the offset cursor for its activation record.
type Scope struct {
	Name     string
	Offset   int
	entities map[Category]map[string]*Entity
}

func newScope(name string, baseOffset int) *Scope {
	s := &Scope{Name: name, Offset: baseOffset}
	s.entities = map[Category]map[string]*Entity{
		Variable:    {},
		Parameter:   {},
		TmpVariable: {},
		Function:    {},
		Procedure:   {},
	}
	return s
}

// Table is a stack of lexical scopes. Index 0 is the program-global scope.
type Table struct {
	Scopes []*Scope

	// BaseOffset and SlotSize govern the activation-record layout every
	// scope in this table is built with. They default to the package
	// constants of the same name but may be overridden by NewWithLayout,
	// letting a config file retune the frame layout without touching
	// the rest of the compiler.
	BaseOffset int
	SlotSize   int

	// tokenPos, when set by the caller ahead of a Table method that can
	// fail, is used to attach a source position to the resulting
	// CompilationError. lines is the full source, for the error preview.
	tokenPos cerrors.Pos
	lines    []string
}

// New creates an empty symbol table using the default activation-record
// layout (BaseOffset/SlotSize).
func New() *Table {
	return NewWithLayout(BaseOffset, SlotSize)
}

// NewWithLayout creates an empty symbol table using a caller-supplied
// activation-record layout, as loaded from a config.Config.
func NewWithLayout(baseOffset, slotSize int) *Table {
	return &Table{BaseOffset: baseOffset, SlotSize: slotSize}
}

// SetErrorContext records the position/source to attach to the next
// CompilationError this table raises. The parser calls this before every
// operation that might fail, mirroring the position of the token it is
// currently looking at.
func (t *Table) SetErrorContext(pos cerrors.Pos, lines []string) {
	t.tokenPos = pos
	t.lines = lines
}

func (t *Table) errf(format string, args ...interface{}) error {
	return cerrors.NewAt(fmt.Sprintf(format, args...), t.tokenPos, t.lines)
}

// CreateScope pushes a new scope with offset reset to the table's
// BaseOffset.
func (t *Table) CreateScope(name string) {
	t.Scopes = append(t.Scopes, newScope(name, t.BaseOffset))
}

// PopScope removes the innermost scope. Entities declared in it become
// unreachable.
func (t *Table) PopScope() {
	t.Scopes = t.Scopes[:len(t.Scopes)-1]
}

// CurrentScopeIndex returns the index of the innermost scope.
func (t *Table) CurrentScopeIndex() int {
	return len(t.Scopes) - 1
}

// CurrentScope returns the innermost scope.
func (t *Table) CurrentScope() *Scope {
	return t.Scopes[len(t.Scopes)-1]
}

// Add declares name in the given category in the innermost scope. It fails
// with AlreadyDeclared if name is already present in the top scope, in any
// category. Storage categories (variable/parameter/tmp_variable) get an
// offset assigned and the scope's cursor advances by one slot.
func (t *Table) Add(category Category, name string, entity *Entity) error {
	if t.Find(name, allCategories, 1) != nil {
		return t.errf("Symbol '%s' is already declared in the same scope.", name)
	}

	scope := t.CurrentScope()
	entity.Name = name
	entity.Category = category
	entity.Scope = t.CurrentScopeIndex()

	if storageCategories[category] {
		entity.Offset = scope.Offset
		scope.Offset += t.SlotSize
	}

	scope.entities[category][name] = entity
	return nil
}

// allCategories is the full set of categories, used when the caller does
// not want to restrict the search.
var allCategories = []Category{Variable, Parameter, TmpVariable, Function, Procedure}

// Find walks the scope stack from innermost to outermost, restricted to
// categories, optionally limited to the top maxDepth scopes (maxDepth <= 0
// means unlimited). It returns the first matching entity, or nil.
func (t *Table) Find(name string, categories []Category, maxDepth int) *Entity {
	depth := 0
	for i := len(t.Scopes) - 1; i >= 0; i-- {
		if maxDepth > 0 && depth >= maxDepth {
			return nil
		}
		depth++
		scope := t.Scopes[i]
		for _, cat := range categories {
			if e, ok := scope.entities[cat][name]; ok {
				return e
			}
		}
	}
	return nil
}

// AssertDeclared fails with Undeclared when Find(name, categories, 0)
// returns nil. The message enumerates the categories the caller required;
// this is the single mechanism spec.md uses to diagnose "function called
// as procedure", "procedure used as expression", "function result ignored
// as statement" and "undeclared variable" uniformly.
func (t *Table) AssertDeclared(name string, categories []Category) error {
	if t.Find(name, categories, 0) == nil {
		return t.errf("Symbol '%s' does not belong to %s.", name, joinCategories(categories))
	}
	return nil
}

func joinCategories(categories []Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, " or ")
}
