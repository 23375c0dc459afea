package engine

import (
	"fmt"
	"sort"
	"sync"

	"tessera/internal/metadata"
)

// bindingKey identifies one (consumer, producer) pair.
type bindingKey struct {
	consumer metadata.Identity
	producer metadata.Identity
}

// Session owns one synthesis run: the resource graph, the accumulated
// binding declarations, and the permission ledger. Sessions are discarded
// after Synthesize; nothing here outlives a run.
type Session struct {
	mu       sync.Mutex
	nodes    map[metadata.Identity]*metadata.Node
	bindings map[bindingKey]map[metadata.Operation]bool
	ledger   *Ledger
}

func NewSession() *Session {
	return &Session{
		nodes:    make(map[metadata.Identity]*metadata.Node),
		bindings: make(map[bindingKey]map[metadata.Operation]bool),
		ledger:   NewLedger(),
	}
}

// DefineResource adds a node to the graph. Validation is eager: unknown
// kinds, malformed identities, duplicate identities and bad specs are
// rejected at call time, not at synthesis.
func (s *Session) DefineResource(kind metadata.Kind, id metadata.Identity, spec any) (*metadata.Node, error) {
	if !metadata.KnownKind(kind) {
		return nil, UnknownKindError(string(kind), id.String())
	}
	if err := id.Validate(); err != nil {
		return nil, InvalidIdentityError(id.String(), err)
	}

	node := &metadata.Node{Kind: kind, ID: id}
	switch kind {
	case metadata.KindTable:
		ts, ok := spec.(*metadata.TableSpec)
		if !ok || ts == nil {
			return nil, InvalidSpecError(id.String(), errSpecKind(kind))
		}
		if err := ts.CheckSpec(); err != nil {
			return nil, InvalidSpecError(id.String(), err)
		}
		node.Table = ts
	case metadata.KindFunction:
		fs, ok := spec.(*metadata.FunctionSpec)
		if !ok || fs == nil {
			return nil, InvalidSpecError(id.String(), errSpecKind(kind))
		}
		node.Function = fs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[id]; exists {
		return nil, DuplicateResourceError(id.String())
	}
	s.nodes[id] = node
	return node, nil
}

// DefineTable is shorthand for DefineResource with the table kind.
func (s *Session) DefineTable(id metadata.Identity, spec *metadata.TableSpec) (*metadata.Node, error) {
	return s.DefineResource(metadata.KindTable, id, spec)
}

// DefineFunction is shorthand for DefineResource with the function kind.
func (s *Session) DefineFunction(id metadata.Identity, spec *metadata.FunctionSpec) (*metadata.Node, error) {
	return s.DefineResource(metadata.KindFunction, id, spec)
}

// Node returns the node with the given identity, or nil.
func (s *Session) Node(id metadata.Identity) *metadata.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes[id]
}

// Nodes returns all graph nodes sorted by identity, so every walk over the
// graph is deterministic across runs.
func (s *Session) Nodes() []*metadata.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*metadata.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Bind declares that the consumer will invoke the given operations on the
// producer. Operations merge into the union already recorded for the pair,
// and the producer's grant is re-inferred from the whole union so a later
// write binding upgrades an earlier read-only grant. Binding the same or a
// subset operation set again is a no-op.
func (s *Session) Bind(consumer, producer metadata.Identity, ops ...metadata.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cn := s.nodes[consumer]
	if cn == nil {
		return UnknownResourceError(consumer.String())
	}
	pn := s.nodes[producer]
	if pn == nil {
		return UnknownResourceError(producer.String())
	}
	if cn.Kind != metadata.KindFunction {
		return UnsupportedBindingError(consumer.String(), producer.String())
	}
	vocab := metadata.OperationVocabulary(pn.Kind)
	if vocab == nil {
		return UnsupportedBindingError(consumer.String(), producer.String())
	}
	if len(ops) == 0 {
		return EmptyOperationsError(producer.String())
	}
	for _, op := range ops {
		if !vocab[op] {
			return UnknownOperationError(producer.String(), string(op))
		}
	}

	key := bindingKey{consumer: consumer, producer: producer}
	union := s.bindings[key]
	if union == nil {
		union = make(map[metadata.Operation]bool)
		s.bindings[key] = union
	}
	for _, op := range ops {
		union[op] = true
	}

	s.ledger.Grant(producer, consumer, InferRole(union))
	return nil
}

// Operations returns the accumulated operation union for a pair, or nil.
func (s *Session) Operations(consumer, producer metadata.Identity) map[metadata.Operation]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	union := s.bindings[bindingKey{consumer: consumer, producer: producer}]
	if union == nil {
		return nil
	}
	out := make(map[metadata.Operation]bool, len(union))
	for op := range union {
		out[op] = true
	}
	return out
}

// Ledger exposes the session's permission ledger.
func (s *Session) Ledger() *Ledger { return s.ledger }

// Synthesize walks the graph in identity order and emits the target
// template. The ledger is queried once, after all bindings are resolved.
// Any node error aborts the run: no partial template is returned.
func (s *Session) Synthesize(syn Synthesizer) (*Template, error) {
	tpl := NewTemplate(syn.Target())
	for _, node := range s.Nodes() {
		objs, err := syn.Synthesize(node, s.ledger.GrantsInvolving(node.ID))
		if err != nil {
			return nil, err
		}
		for _, obj := range objs {
			tpl.Add(obj)
		}
	}
	return tpl, nil
}

func errSpecKind(kind metadata.Kind) error {
	return fmt.Errorf("spec does not match resource kind %s", kind)
}
