// Package app owns the live character sheet and wires it to persistence.
package app

import (
	"context"
	"sync"

	"github.com/louisbranch/charsheet/internal/services/sheet/domain"
	"github.com/louisbranch/charsheet/internal/services/sheet/sheetsync"
)

// Snapshot is a consistent read of the sheet and its derived views.
type Snapshot struct {
	Attributes []domain.AttributeRow
	Skills     []domain.SkillRow
	Classes    []domain.ClassEligibility
	Status     sheetsync.Status
}

// ClassDetail is the requirement breakdown of one class.
type ClassDetail struct {
	Name         string
	Requirements []domain.Requirement
	Eligible     bool
}

// Engine is the single owner of sheet state. Mutations are atomic
// read-modify-write steps under one mutex.
type Engine struct {
	ruleset domain.Ruleset
	sync    *sheetsync.Controller

	mu      sync.Mutex
	sheet   domain.Sheet
	subs    map[int]func(Snapshot)
	nextSub int
}

// New builds an engine with a fresh sheet from ruleset. The sync
// controller starts in the loading state; call Start to fetch.
func New(ruleset domain.Ruleset, remote sheetsync.Remote, opts ...sheetsync.Option) *Engine {
	e := &Engine{
		ruleset: ruleset,
		sheet:   ruleset.NewSheet(),
		subs:    make(map[int]func(Snapshot)),
	}
	e.sync = sheetsync.New(remote, e, opts...)
	e.sync.Subscribe(func(sheetsync.Status) { e.publish() })
	return e
}

// Ruleset returns the static configuration in use.
func (e *Engine) Ruleset() domain.Ruleset {
	return e.ruleset
}

// Start issues the initial load.
func (e *Engine) Start(ctx context.Context) (<-chan sheetsync.Status, error) {
	return e.sync.Start(ctx)
}

// Load re-fetches the remote document.
func (e *Engine) Load(ctx context.Context) (<-chan sheetsync.Status, error) {
	return e.sync.Load(ctx)
}

// Save posts the sheet as it is at call time.
func (e *Engine) Save(ctx context.Context) (<-chan sheetsync.Status, error) {
	e.mu.Lock()
	doc := e.sheet.Document()
	e.mu.Unlock()
	return e.sync.Save(ctx, doc)
}

// Status returns the sync status.
func (e *Engine) Status() sheetsync.Status {
	return e.sync.Status()
}

// SubscribeStatus registers fn for sync status changes only.
func (e *Engine) SubscribeStatus(fn func(sheetsync.Status)) func() {
	return e.sync.Subscribe(fn)
}

// Wait blocks until in-flight sync requests settle.
func (e *Engine) Wait() {
	e.sync.Wait()
}

// Adjust changes an attribute value.
func (e *Engine) Adjust(name string, delta int) {
	e.update(func(s domain.Sheet) domain.Sheet { return s.Adjust(name, delta) })
}

// Allocate changes the points spent on a skill.
func (e *Engine) Allocate(name string, delta int) {
	e.update(func(s domain.Sheet) domain.Sheet { return s.Allocate(name, delta) })
}

// ReplaceAll swaps the sheet for a loaded document.
func (e *Engine) ReplaceAll(attrs []domain.Attribute, skills []domain.Skill) {
	e.update(func(s domain.Sheet) domain.Sheet { return s.ReplaceAll(attrs, skills) })
}

// Sheet returns a copy of the current sheet. Writes to it never reach the
// engine.
func (e *Engine) Sheet() domain.Sheet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.Sheet{
		Attributes: e.sheet.Attributes.Clone(),
		Skills:     e.sheet.Skills.Clone(),
	}
}

// Snapshot reads the sheet, its derived rows, class eligibility, and the
// sync status.
func (e *Engine) Snapshot() Snapshot {
	sheet := e.Sheet()
	return Snapshot{
		Attributes: sheet.AttributeRows(),
		Skills:     sheet.SkillRows(),
		Classes:    domain.EvaluateClasses(e.ruleset.Classes, sheet.Attributes),
		Status:     e.sync.Status(),
	}
}

// Classes evaluates every class against the current attributes.
func (e *Engine) Classes() []domain.ClassEligibility {
	return domain.EvaluateClasses(e.ruleset.Classes, e.Sheet().Attributes)
}

// ClassDetail returns the requirements of the named class.
func (e *Engine) ClassDetail(name string) (ClassDetail, bool) {
	class, ok := e.ruleset.Class(name)
	if !ok {
		return ClassDetail{}, false
	}
	return ClassDetail{
		Name:         class.Name,
		Requirements: class.RequirementList(e.ruleset.Attributes),
		Eligible:     domain.IsEligible(class.Requirements, e.Sheet().Attributes),
	}, true
}

// Subscribe registers fn for every sheet or status change.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

func (e *Engine) update(fn func(domain.Sheet) domain.Sheet) {
	e.mu.Lock()
	e.sheet = fn(e.sheet)
	e.mu.Unlock()
	e.publish()
}

func (e *Engine) publish() {
	e.mu.Lock()
	if len(e.subs) == 0 {
		e.mu.Unlock()
		return
	}
	subs := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	snap := e.Snapshot()
	for _, fn := range subs {
		fn(snap)
	}
}
