package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/rplkit/internal/format"
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/rpl"
)

// Call is one phase a Probe struct went through.
type Call struct {
	Struct string
	Phase  string
}

// RecorderModule registers a "Probe" struct type whose behaviour records
// every prepare and data phase it runs, in order.
type RecorderModule struct {
	mu    sync.Mutex
	calls []Call
}

// Calls returns the phases recorded so far.
func (m *RecorderModule) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *RecorderModule) record(s *rpl.Struct, phase string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Struct: s.Name, Phase: phase})
}

// Register implements the registry.Module interface.
func (m *RecorderModule) Register(r *registry.Registry) {
	r.RegisterStruct(&registry.StructDef{
		Name:     "Probe",
		TopLevel: true,
		AnyChild: true,
		AnyKey:   true,
		New:      func() any { return &probe{m: m} },
	})
}

type probe struct {
	m *RecorderModule
	s *rpl.Struct
}

func (p *probe) Bind(s *rpl.Struct) error {
	p.s = s
	return nil
}

func (p *probe) ExportPrepare(ctx context.Context, env *format.Env) error {
	p.m.record(p.s, "ExportPrepare")
	return nil
}

func (p *probe) ExportData(ctx context.Context, env *format.Env) error {
	p.m.record(p.s, "ExportData")
	return nil
}

func (p *probe) ImportPrepare(ctx context.Context, env *format.Env) error {
	p.m.record(p.s, "ImportPrepare")
	return nil
}

func (p *probe) ImportData(ctx context.Context, env *format.Env) error {
	p.m.record(p.s, "ImportData")
	return nil
}
